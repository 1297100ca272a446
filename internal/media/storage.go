package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// ErrInvalidName is returned for a storage name that escapes the root or is empty
var ErrInvalidName = errors.New("invalid storage name")

// Storage is the backend pictures are saved to
type Storage interface {
	// Save writes data under name, or under a free variant of it when name
	// is taken, and returns the name actually used
	Save(name string, data io.Reader) (string, error)
	Open(name string) (io.ReadCloser, error)
	Exists(name string) (bool, error)
	Delete(name string) error
	// URL is the public address of a stored file
	URL(name string) string
}

// LocalStorage keeps files in a directory served under a URL prefix
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage stores files under root and serves them from baseURL,
// e.g. "/media/"
func NewLocalStorage(root, baseURL string) *LocalStorage {
	log.WithFields(logrus.Fields{
		"root":     root,
		"base_url": baseURL,
	}).Info("Creating local media storage")
	return &LocalStorage{root: root, baseURL: baseURL}
}

// Root is the directory files are written to
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) fullpath(name string) (string, error) {
	clean := filepath.Clean("/" + filepath.ToSlash(name))
	if clean == "/" {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Save(name string, data io.Reader) (string, error) {
	name = ValidName(name)
	if name == "" {
		return "", ErrInvalidName
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		log.WithError(err).WithField("root", s.root).Error("Failed to create media directory")
		return "", fmt.Errorf("creating media directory: %w", err)
	}

	file, name, err := s.create(name)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		log.WithError(err).WithField("name", name).Error("Failed to write media file")
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("writing %s: %w", name, err)
	}

	log.WithField("name", name).Debug("Media file saved")
	return name, nil
}

// create opens name exclusively, appending a random suffix to the stem
// until an unused name is found
func (s *LocalStorage) create(name string) (*os.File, string, error) {
	candidate := name
	for attempt := 0; attempt < 10; attempt++ {
		fullpath, err := s.fullpath(candidate)
		if err != nil {
			return nil, "", err
		}
		file, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			log.WithError(err).WithField("path", fullpath).Error("Failed to open media file")
			return nil, "", fmt.Errorf("opening %s: %w", candidate, err)
		}
		candidate = alternativeName(name)
	}
	return nil, "", fmt.Errorf("no free name for %s", name)
}

func (s *LocalStorage) Open(name string) (io.ReadCloser, error) {
	fullpath, err := s.fullpath(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullpath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return file, nil
}

func (s *LocalStorage) Exists(name string) (bool, error) {
	fullpath, err := s.fullpath(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullpath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", name, err)
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *LocalStorage) Delete(name string) error {
	fullpath, err := s.fullpath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullpath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("path", fullpath).Error("Failed to delete media file")
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(filepath.ToSlash(name), "/")
}

var unsafeChars = regexp.MustCompile(`[^\w.-]`)

// ValidName reduces an uploaded file name to a safe base name: spaces
// become underscores and anything other than letters, digits, dot, dash
// and underscore is dropped
func ValidName(name string) string {
	name = filepath.Base(filepath.ToSlash(strings.TrimSpace(name)))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	return name
}

func alternativeName(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:7], ext)
}
