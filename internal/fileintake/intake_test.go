package fileintake

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"abcretail/internal/model"
)

func newIntake(t *testing.T) *Intake {
	t.Helper()
	root := t.TempDir()
	return New(filepath.Join(root, "blobs"), filepath.Join(root, "shares"), zap.NewNop())
}

func TestStoreProductImage(t *testing.T) {
	in := newIntake(t)

	name, err := in.StoreProductImage(strings.NewReader("png bytes"), "widget.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "-widget.png"))

	data, err := os.ReadFile(filepath.Join(in.blobRoot, model.ProductImagesContainer, name))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestStoreProductImageNamesDoNotCollide(t *testing.T) {
	in := newIntake(t)

	first, err := in.StoreProductImage(strings.NewReader("a"), "widget.png")
	require.NoError(t, err)
	second, err := in.StoreProductImage(strings.NewReader("b"), "widget.png")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStorePaymentProofExtensionAllowList(t *testing.T) {
	in := newIntake(t)

	tests := []struct {
		name    string
		allowed bool
	}{
		{"receipt.pdf", true},
		{"receipt.PDF", true},
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"scan.png", true},
		{"malware.exe", false},
		{"notes.txt", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.StorePaymentProof(strings.NewReader("data"), tt.name, "o1", "Jane Doe")
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				var ee *ErrDisallowedExtension
				assert.ErrorAs(t, err, &ee)
			}
		})
	}
}

func TestStorePaymentProofWritesShareCopyAndSidecar(t *testing.T) {
	in := newIntake(t)

	name, err := in.StorePaymentProof(strings.NewReader("proof bytes"), "receipt.pdf", "order-42", "Jane Doe")
	require.NoError(t, err)

	shareDir := filepath.Join(in.shareRoot, model.ContractsShare, model.PaymentsDirectory)

	copied, err := os.ReadFile(filepath.Join(shareDir, name))
	require.NoError(t, err)
	assert.Equal(t, "proof bytes", string(copied))

	sidecar, err := os.ReadFile(filepath.Join(shareDir, name+".txt"))
	require.NoError(t, err)
	meta := string(sidecar)
	assert.Contains(t, meta, "OrderId: order-42")
	assert.Contains(t, meta, "CustomerName: Jane Doe")
	assert.Contains(t, meta, model.PaymentProofsContainer+"/"+name)
}

func TestListAndOpenContracts(t *testing.T) {
	in := newIntake(t)

	// Empty share lists cleanly before anything is uploaded.
	names, err := in.ListContracts()
	require.NoError(t, err)
	assert.Empty(t, names)

	stored, err := in.StorePaymentProof(strings.NewReader("proof"), "receipt.pdf", "o1", "Jane")
	require.NoError(t, err)

	names, err = in.ListContracts()
	require.NoError(t, err)
	assert.Contains(t, names, stored)
	assert.Contains(t, names, stored+".txt")

	f, err := in.OpenContract(stored)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "proof", string(data))

	_, err = in.OpenContract("nope.pdf")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
