package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/models"
)

const (
	dataFileMode = 0o600
	dataDirMode  = 0o755
)

// transactionDocument is the top level shape of the data file
type transactionDocument struct {
	Transactions []models.TransactionRecord `json:"transactions"`
}

type loadOptions struct {
	onMalformed func(index int, err error)
}

// LoadOption configures LoadTransactions
type LoadOption func(*loadOptions)

// WithSkipMalformed makes a load keep going past entries that cannot be
// decoded. Each skipped entry is reported to fn with its zero-based index.
func WithSkipMalformed(fn func(index int, err error)) LoadOption {
	return func(o *loadOptions) {
		if fn == nil {
			fn = func(int, error) {}
		}
		o.onMalformed = fn
	}
}

// LoadTransactions reads the data file at path. A missing file is the first
// run and yields an empty collection.
func LoadTransactions(path string, opts ...LoadOption) ([]models.Transaction, error) {
	options := loadOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Transaction{}, nil
	}
	if err != nil {
		return nil, apierrors.NewIOError(apierrors.StorageReadFailed, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apierrors.NewFormatError(apierrors.FormatInvalidDocument, "", documentError(err))
	}

	raw, ok := doc["transactions"]
	if !ok {
		return nil, apierrors.NewFormatError(apierrors.FormatMissingContainer, "transactions", nil)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, apierrors.NewFormatError(apierrors.FormatMissingContainer, "transactions",
			errors.New("transactions must be a list"))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, apierrors.NewFormatError(apierrors.FormatInvalidDocument, "transactions", err)
	}

	transactions := make([]models.Transaction, 0, len(entries))
	for i, entry := range entries {
		tx, err := models.DecodeTransaction(entry)
		if err != nil {
			err = withIndex(err, i)
			if options.onMalformed != nil {
				options.onMalformed(i, err)
				continue
			}
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// SaveTransactions rewrites the data file at path with transactions in order.
// The document is written to a temporary file and renamed into place, so a
// failed save leaves the previous file untouched.
func SaveTransactions(path string, transactions []models.Transaction) error {
	doc := transactionDocument{Transactions: make([]models.TransactionRecord, 0, len(transactions))}
	for _, tx := range transactions {
		doc.Transactions = append(doc.Transactions, tx.ToRecord())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return apierrors.NewIOError(apierrors.StorageWriteFailed, fmt.Errorf("encode transactions: %w", err))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dataDirMode); err != nil {
		return apierrors.NewIOError(apierrors.StorageWriteFailed, err)
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return apierrors.NewIOError(apierrors.StorageWriteFailed, err)
	}

	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(dataFileMode); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func withIndex(err error, index int) error {
	var appErr *apierrors.Error
	if errors.As(err, &appErr) {
		return appErr.WithIndex(index)
	}
	return fmt.Errorf("entry %d: %w", index, err)
}

func documentError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("top level must be an object, got %s", typeErr.Value)
	}
	return err
}

// JSONFileRepository stores the collection as one JSON document
type JSONFileRepository struct {
	path string
	opts []LoadOption
}

// NewJSONFileRepository creates a repository for the data file at path
func NewJSONFileRepository(path string, opts ...LoadOption) *JSONFileRepository {
	return &JSONFileRepository{
		path: path,
		opts: opts,
	}
}

func (r *JSONFileRepository) Load() ([]models.Transaction, error) {
	return LoadTransactions(r.path, r.opts...)
}

func (r *JSONFileRepository) Save(transactions []models.Transaction) error {
	return SaveTransactions(r.path, transactions)
}

func (r *JSONFileRepository) Location() string {
	return r.path
}

// Ping checks that the data file, if present, is a readable regular file
func (r *JSONFileRepository) Ping() error {
	info, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apierrors.NewIOError(apierrors.StorageUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return apierrors.NewIOError(apierrors.StorageUnavailable, fmt.Errorf("%s is not a regular file", r.path))
	}
	return nil
}
