// Package meta holds the free-form metadata stored as JSON in the extended
// header region of an MRCZ file.
//
// Values are a small tagged union of integers, floats and strings. The JSON
// form keeps the two numeric variants apart by their text: a float is always
// written with a decimal point or an exponent, so 5 and 5.0 survive a round
// trip as different values.
//
// Decoding accepts a single top-level object whose members are numbers or
// strings. Nested objects, arrays, booleans and null are rejected.
package meta
