package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/harrylevesque/deviceadmin/internal/models"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

const (
	allowListFileName = "admin_allowlist.json"
)

// AllowListStore keeps the admin allow-list in a JSON file in the
// installation data dir.
type AllowListStore struct {
	filePath string
	mu       sync.RWMutex
}

// NewAllowListStore creates a store rooted at dir. The file is created on the
// first grant.
func NewAllowListStore(dir string) *AllowListStore {
	return &AllowListStore{
		filePath: filepath.Join(dir, allowListFileName),
	}
}

// Path returns the backing file.
func (s *AllowListStore) Path() string { return s.filePath }

// Contains reports whether deviceID has been granted admin.
func (s *AllowListStore) Contains(_ context.Context, deviceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, err := s.load()
	if err != nil {
		return false, err
	}
	for _, e := range list.Admins {
		if e.DeviceID == deviceID {
			return true, nil
		}
	}
	return false, nil
}

// Add inserts entry unless its device ID is already present.
func (s *AllowListStore) Add(_ context.Context, entry models.AdminEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}
	for _, e := range list.Admins {
		if e.DeviceID == entry.DeviceID {
			return nil
		}
	}

	list.Version = models.AllowListVersion
	list.Admins = append(list.Admins, entry)
	return s.save(list)
}

// List returns all entries ordered by grant time.
func (s *AllowListStore) List(_ context.Context) ([]models.AdminEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, err := s.load()
	if err != nil {
		return nil, err
	}
	out := append([]models.AdminEntry(nil), list.Admins...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out, nil
}

// load reads the file. A missing file is an empty list; an unreadable or
// corrupt one is an error so callers fail closed and never overwrite it.
func (s *AllowListStore) load() (models.AllowList, error) {
	list := models.AllowList{Version: models.AllowListVersion}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return list, nil
		}
		return list, utils.Wrap(utils.CodeStorageUnavailable, "read allow-list", err)
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return list, utils.Wrap(utils.CodeStorageUnavailable, "decode allow-list", err)
	}
	if list.Version > models.AllowListVersion {
		return list, utils.Wrap(utils.CodeStorageUnavailable, "decode allow-list",
			fmt.Errorf("unsupported version %d", list.Version))
	}
	return list, nil
}

func (s *AllowListStore) save(list models.AllowList) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return utils.Wrap(utils.CodeStorageUnavailable, "encode allow-list", err)
	}
	if err := writeFileAtomic(s.filePath, data, 0600); err != nil {
		return utils.Wrap(utils.CodeStorageUnavailable, "write allow-list", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the same dir and renames it over
// path, so readers never see a half-written file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
