package fileintake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcretail/internal/model"
)

// proofExtensions is the payment-proof allow-list, matched
// case-insensitively.
var proofExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// ErrDisallowedExtension rejects payment proofs outside the allow-list.
type ErrDisallowedExtension struct {
	Extension string
}

func (e *ErrDisallowedExtension) Error() string {
	return fmt.Sprintf("file extension %q not allowed, only PDF and image files (JPG, PNG) are accepted", e.Extension)
}

// Intake persists uploaded binaries. Blob containers and the contracts
// share are directories under the configured roots; stored names are
// uuid-prefixed so uploads never collide.
type Intake struct {
	blobRoot  string
	shareRoot string
	log       *zap.Logger
}

func New(blobRoot, shareRoot string, log *zap.Logger) *Intake {
	return &Intake{blobRoot: blobRoot, shareRoot: shareRoot, log: log}
}

// StoreProductImage writes a product image to the product-images
// container and returns the stored name.
func (in *Intake) StoreProductImage(content io.Reader, originalName string) (string, error) {
	name := storedName(originalName)
	if err := in.writeBlob(model.ProductImagesContainer, name, content); err != nil {
		return "", err
	}
	in.log.Info("Product image stored",
		zap.String("file_name", name),
		zap.String("original_name", originalName))
	return name, nil
}

// StorePaymentProof validates the extension, writes the file to the
// payment-proofs container and to the contracts share, and drops a
// sidecar metadata file next to the share copy.
func (in *Intake) StorePaymentProof(content io.Reader, originalName, orderID, customerName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := proofExtensions[ext]; !ok {
		return "", &ErrDisallowedExtension{Extension: ext}
	}

	name := storedName(originalName)

	// The share copy needs the content twice; buffer through the blob
	// file rather than holding the upload in memory.
	if err := in.writeBlob(model.PaymentProofsContainer, name, content); err != nil {
		return "", err
	}
	blobPath := filepath.Join(in.blobRoot, model.PaymentProofsContainer, name)

	shareDir := filepath.Join(in.shareRoot, model.ContractsShare, model.PaymentsDirectory)
	if err := os.MkdirAll(shareDir, 0o755); err != nil {
		return "", fmt.Errorf("create share directory: %w", err)
	}

	src, err := os.Open(blobPath)
	if err != nil {
		return "", fmt.Errorf("reopen stored blob: %w", err)
	}
	defer src.Close()
	if err := writeFile(filepath.Join(shareDir, name), src); err != nil {
		return "", err
	}

	meta := fmt.Sprintf("UploadedAtUtc: %s\nOrderId: %s\nCustomerName: %s\nBlobRef: %s/%s\n",
		time.Now().UTC().Format(time.RFC3339Nano), orderID, customerName,
		model.PaymentProofsContainer, name)
	if err := os.WriteFile(filepath.Join(shareDir, name+".txt"), []byte(meta), 0o644); err != nil {
		return "", fmt.Errorf("write sidecar metadata: %w", err)
	}

	in.log.Info("Payment proof stored",
		zap.String("file_name", name),
		zap.String("order_id", orderID))
	return name, nil
}

// ListContracts returns the file names in the contracts share's
// payments directory, sidecars included.
func (in *Intake) ListContracts() ([]string, error) {
	dir := filepath.Join(in.shareRoot, model.ContractsShare, model.PaymentsDirectory)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list contracts share: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// OpenContract opens a stored contract file for download. The name is
// sanitized to its base so callers cannot walk out of the share.
func (in *Intake) OpenContract(name string) (io.ReadCloser, error) {
	path := filepath.Join(in.shareRoot, model.ContractsShare, model.PaymentsDirectory, filepath.Base(name))
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, os.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("open contract file: %w", err)
	}
	return f, nil
}

func (in *Intake) writeBlob(container, name string, content io.Reader) error {
	dir := filepath.Join(in.blobRoot, container)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create container %s: %w", container, err)
	}
	return writeFile(filepath.Join(dir, name), content)
}

func writeFile(path string, content io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// storedName builds a collision-resistant name preserving the original
// base name for readability.
func storedName(originalName string) string {
	return uuid.New().String() + "-" + filepath.Base(originalName)
}
