package domain

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "registry.create",
		Kind: KindInvalidArgument,
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}

	var got *OpError
	if !errors.As(err, &got) {
		t.Fatalf("expected errors.As to match OpError")
	}
	if got.Kind != KindInvalidArgument {
		t.Fatalf("expected kind %s", KindInvalidArgument)
	}
}

func TestIsKindForInvalidArgument(t *testing.T) {
	err := invalidArgument("product.pay", "amount cannot be negative")

	if !IsKind(err, KindInvalidArgument) {
		t.Fatalf("expected IsKind to match")
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected sentinel to be wrapped")
	}
	if IsKind(err, KindIO) {
		t.Fatalf("unexpected kind match")
	}
}

func TestIOErrorNamesPath(t *testing.T) {
	err := IOError("backup.write", "/tmp/x.csv", fs.ErrPermission)

	if !IsKind(err, KindIO) {
		t.Fatalf("expected KindIO")
	}
	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected both sentinel and cause to match, got %v", err)
	}
	if !strings.Contains(err.Error(), "path=/tmp/x.csv") {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestOpErrorNilSafe(t *testing.T) {
	var e *OpError
	if e.Error() != "<nil>" {
		t.Fatalf("unexpected nil message %q", e.Error())
	}
	if e.Unwrap() != nil {
		t.Fatalf("expected nil unwrap")
	}
}
