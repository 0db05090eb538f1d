package utils

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/harrylevesque/deviceadmin/internal/crypto"
)

// linuxIDFiles are tried in order. machine-id is world readable; the DMI uuid
// usually needs root.
var linuxIDFiles = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
	"/sys/class/dmi/id/product_uuid",
}

// GetDeviceFingerprints returns a slice of unique device IDs (CPU/hardware UUIDs) for the current device.
// On mobile/web platforms, this must be provided by the client app (see config DEVICE_ID).
func GetDeviceFingerprints() ([]string, error) {
	osName := runtime.GOOS
	switch osName {
	case "darwin":
		return getMacOSUUID()
	case "linux":
		return getLinuxUUID()
	case "windows":
		return getWindowsUUID()
	case "android":
		return nil, Wrap(CodeIdentifierUnavailable, "Android: must provide ANDROID_ID from app", ErrIdentifierUnavailable)
	case "ios":
		return nil, Wrap(CodeIdentifierUnavailable, "iOS: must provide identifierForVendor from app", ErrIdentifierUnavailable)
	default:
		return nil, Wrap(CodeIdentifierUnavailable, "unsupported platform: "+osName, ErrIdentifierUnavailable)
	}
}

// PlatformSource reads the hardware fingerprint of the host and turns it into
// an opaque device identifier.
type PlatformSource struct{}

func (PlatformSource) DeviceID(_ context.Context) (string, error) {
	fps, err := GetDeviceFingerprints()
	if err != nil {
		return "", err
	}
	if len(fps) == 0 {
		return "", ErrIdentifierUnavailable
	}
	return crypto.DeriveDeviceID(fps[0])
}

func getMacOSUUID() ([]string, error) {
	out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return nil, err
	}
	ids := parseIOPlatformUUID(string(out))
	if len(ids) == 0 {
		return nil, errors.New("no IOPlatformUUID found")
	}
	return ids, nil
}

func getLinuxUUID() ([]string, error) {
	for _, path := range linuxIDFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return []string{id}, nil
		}
	}
	// Raspberry Pi and other ARM boards expose a Serial line instead
	if cpuinfo, err := os.ReadFile("/proc/cpuinfo"); err == nil {
		if id := parseCPUInfoSerial(string(cpuinfo)); id != "" {
			return []string{id}, nil
		}
	}
	return nil, errors.New("no hardware UUID found on Linux")
}

func getWindowsUUID() ([]string, error) {
	if out, err := exec.Command("wmic", "csproduct", "get", "UUID").Output(); err == nil {
		if id := parseWMICValue(string(out), "UUID"); id != "" {
			return []string{id}, nil
		}
	}
	if out, err := exec.Command("wmic", "cpu", "get", "ProcessorId").Output(); err == nil {
		if id := parseWMICValue(string(out), "ProcessorId"); id != "" {
			return []string{id}, nil
		}
	}
	return nil, errors.New("no hardware UUID found on Windows")
}

// parseIOPlatformUUID extracts IOPlatformUUID values from `ioreg` output.
func parseIOPlatformUUID(out string) []string {
	var ids []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "IOPlatformUUID") {
			continue
		}
		parts := strings.Split(line, "\"")
		if len(parts) >= 4 && parts[3] != "" {
			ids = append(ids, parts[3])
		}
	}
	return ids
}

func parseCPUInfoSerial(cpuinfo string) string {
	for _, line := range strings.Split(cpuinfo, "\n") {
		if !strings.HasPrefix(line, "Serial") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 {
			if id := strings.TrimSpace(parts[1]); id != "" {
				return id
			}
		}
	}
	return ""
}

// parseWMICValue returns the first non-header, non-empty line of wmic output.
func parseWMICValue(out, header string) string {
	for _, line := range strings.Split(out, "\n") {
		s := strings.TrimSpace(line)
		if s != "" && !strings.EqualFold(s, header) {
			return s
		}
	}
	return ""
}
