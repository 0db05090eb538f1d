package files

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/deviceadmin/internal/models"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

const installationFileName = "installation.json"

// InstallationStore hands out an identifier generated once per data dir. It
// stands in for the platform id when the hardware can't be read.
type InstallationStore struct {
	filePath string
	mu       sync.Mutex
	cached   *models.Installation
}

func NewInstallationStore(dir string) *InstallationStore {
	return &InstallationStore{filePath: filepath.Join(dir, installationFileName)}
}

// LoadOrCreate returns the stored installation, creating it on first use.
func (s *InstallationStore) LoadOrCreate() (models.Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return *s.cached, nil
	}

	inst, err := s.read()
	if err == nil {
		s.cached = &inst
		return inst, nil
	}
	if !os.IsNotExist(err) {
		return models.Installation{}, utils.Wrap(utils.CodeStorageUnavailable, "read installation", err)
	}

	inst = models.Installation{
		InstallationID: "i--" + uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
	}
	data, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return models.Installation{}, err
	}
	if err := writeFileAtomic(s.filePath, data, 0600); err != nil {
		return models.Installation{}, utils.Wrap(utils.CodeStorageUnavailable, "write installation", err)
	}
	s.cached = &inst
	return inst, nil
}

// DeviceID implements admin.IdentifierSource.
func (s *InstallationStore) DeviceID(_ context.Context) (string, error) {
	inst, err := s.LoadOrCreate()
	if err != nil {
		return "", err
	}
	return inst.InstallationID, nil
}

func (s *InstallationStore) read() (models.Installation, error) {
	var inst models.Installation
	f, err := os.Open(s.filePath)
	if err != nil {
		return inst, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&inst); err != nil {
		return inst, err
	}
	if strings.TrimSpace(inst.InstallationID) == "" {
		return inst, utils.New(utils.CodeStorageUnavailable, "installation file has no id")
	}
	return inst, nil
}
