package mrcz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robert-malhotra/go-mrcz/internal/executor"
)

func TestAsync(t *testing.T) {
	Convey("asynchronous write then read", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "async.mrcz")
		arr := testVolume(t, Float32, [3]int{2, 32, 32})

		wh := AsyncWriteFile(path, arr, writeOpts(WithCompressor("zstd"), WithLevel(1))...)
		_, err := wh.Result()
		So(err, ShouldBeNil)

		Convey("the write result is memoized", func() {
			_, err := wh.Result()
			So(err, ShouldBeNil)
			closed := false
			select {
			case <-wh.Done():
				closed = true
			default:
			}
			So(closed, ShouldBeTrue)
		})

		Convey("the read result is the same on every call", func() {
			rh := AsyncReadFile(path)
			first, err := rh.Result()
			So(err, ShouldBeNil)
			So(first.Array.Data, ShouldResemble, arr.Data)
			So(first.Header.Compressor, ShouldEqual, "zstd")
			So(first.Header.PixelUnit, ShouldEqual, "Å")

			second, err := rh.Result()
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)

			third, err := rh.Wait(context.Background())
			So(err, ShouldBeNil)
			So(third, ShouldEqual, first)
		})

		Convey("read errors surface through the handle", func() {
			rh := AsyncReadFile(filepath.Join(dir, "missing.mrc"))
			res, err := rh.Result()
			So(res, ShouldBeNil)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("write errors surface through the handle", func() {
			wh := AsyncWriteFile(path, arr, WithCompressor("zstd1"))
			_, err := wh.Result()
			So(errors.Is(err, ErrUnsupportedCompressor), ShouldBeTrue)
		})
	})
}

func TestAsyncCancel(t *testing.T) {
	Convey("canceling a queued write", t, func() {
		SetAsyncWorkers(1)
		defer SetAsyncWorkers(0)

		started := make(chan struct{})
		release := make(chan struct{})
		blocker := submit(func() (struct{}, error) {
			close(started)
			<-release
			return struct{}{}, nil
		})
		<-started

		path := filepath.Join(t.TempDir(), "canceled.mrc")
		arr := testVolume(t, Int8, [3]int{1, 8, 8})
		wh := AsyncWriteFile(path, arr)
		wh.Cancel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, err := wh.Wait(ctx)
		cancel()
		So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)

		close(release)
		_, err = blocker.Result()
		So(err, ShouldBeNil)

		_, err = wh.Result()
		So(errors.Is(err, ErrCanceled), ShouldBeTrue)
		_, statErr := os.Stat(path)
		So(os.IsNotExist(statErr), ShouldBeTrue)

		Convey("cancel after completion changes nothing", func() {
			blocker.Cancel()
			_, err := blocker.Result()
			So(err, ShouldBeNil)
		})
	})
}

func TestAsyncPanic(t *testing.T) {
	Convey("a panicking operation completes its handle", t, func() {
		h := submit(func() (int, error) {
			panic("boom")
		})
		v, err := h.Result()
		So(v, ShouldEqual, 0)
		So(errors.Is(err, executor.ErrPanic), ShouldBeTrue)
	})
}
