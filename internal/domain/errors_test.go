package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("Cart.Add", ErrInsufficientStock, "product 5")
	want := "Cart.Add: product 5: insufficient stock"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("Sale.Submit", ErrEmptyCart, "")
	want := "Sale.Submit: cart is empty"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("Demux.Rfid", ErrDecode, "unexpected EOF")
	if !errors.Is(err, ErrDecode) {
		t.Error("errors.Is should match ErrDecode")
	}
}

func TestDomainErrorAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewDomainError("Backend.Stats", ErrUnavailable, "circuit open"))
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should match *DomainError")
	}
	if de.Op != "Backend.Stats" {
		t.Errorf("Op = %q, want %q", de.Op, "Backend.Stats")
	}
}

func TestWrapOp(t *testing.T) {
	assert.NoError(t, WrapOp("op", nil))

	err := WrapOp("Backend.DeleteShelf", ErrNotFound)
	assert.EqualError(t, err, "Backend.DeleteShelf: not found")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIError_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{400, ErrInvalidInput},
		{401, ErrAuthInvalid},
		{404, ErrNotFound},
		{409, ErrInvalidInput},
		{429, ErrRateLimit},
		{500, ErrUnavailable},
		{503, ErrUnavailable},
		{418, ErrBackend},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := &APIError{Op: "Backend.Test", Status: tt.status}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAPIError_Format(t *testing.T) {
	assert.Equal(t, "Backend.CreateShelf: status 400: name taken",
		(&APIError{Op: "Backend.CreateShelf", Status: 400, Message: "name taken"}).Error())
	assert.Equal(t, "Backend.Stats: status 502",
		(&APIError{Op: "Backend.Stats", Status: 502}).Error())
}

func TestMessageOf(t *testing.T) {
	withMsg := WrapOp("Dashboard.SaveProduct", &APIError{Op: "Backend.CreateProduct", Status: 409, Message: "barcode already exists"})
	assert.Equal(t, "barcode already exists", MessageOf(withMsg, "could not save product"))

	noMsg := &APIError{Op: "Backend.CreateProduct", Status: 500}
	assert.Equal(t, "could not save product", MessageOf(noMsg, "could not save product"))

	assert.Equal(t, "fallback", MessageOf(errors.New("dial tcp: refused"), "fallback"))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(&APIError{Status: 503}))
	assert.True(t, IsRetryableError(WrapOp("x", ErrTimeout)))
	assert.False(t, IsRetryableError(&APIError{Status: 404}))
	assert.False(t, IsRetryableError(ErrEmptyCart))
}

// --- ErrorCode tests ---

func TestErrorCodeOf_DirectSentinel(t *testing.T) {
	assert.Equal(t, CodeEmptyCart, ErrorCodeOf(ErrEmptyCart))
	assert.Equal(t, CodeNotFound, ErrorCodeOf(ErrNotFound))
	assert.Equal(t, CodeRateLimit, ErrorCodeOf(ErrRateLimit))
	assert.Equal(t, CodeUnavailable, ErrorCodeOf(ErrUnavailable))
}

func TestErrorCodeOf_DomainError(t *testing.T) {
	err := NewDomainError("Cart.Update", ErrInsufficientStock, "product 1")
	assert.Equal(t, CodeInsufficientStock, ErrorCodeOf(err))
}

func TestErrorCodeOf_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrNotConnected)
	assert.Equal(t, CodeNotConnected, ErrorCodeOf(wrapped))
}

func TestErrorCodeOf_APIError(t *testing.T) {
	assert.Equal(t, CodeNotFound, ErrorCodeOf(&APIError{Status: 404}))
	assert.Equal(t, CodeUnavailable, ErrorCodeOf(&APIError{Status: 502}))
}

func TestErrorCodeOf_UnknownError(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(fmt.Errorf("some random error")))
}

func TestErrorCodeOf_Nil(t *testing.T) {
	assert.Equal(t, CodeOK, ErrorCodeOf(nil))
}

func TestDomainError_Code(t *testing.T) {
	err := NewDomainError("Demux.Alert", ErrInvalidPayload, "id missing")
	assert.Equal(t, CodeInvalidPayload, err.Code())
}

func TestErrorCodeMapCoversOrder(t *testing.T) {
	require.Len(t, errorCodeOrder, len(errorCodeMap))
	for _, sentinel := range errorCodeOrder {
		_, ok := errorCodeMap[sentinel]
		assert.True(t, ok, "missing code for %v", sentinel)
	}
}
