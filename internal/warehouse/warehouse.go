// Package warehouse resolves the shared model-warehouse layout and
// translates cross-OS path syntax (Windows drive letters, Git Bash and
// WSL mount conventions) into the host's native form.
package warehouse

import (
	"os"
	"runtime"
	"strings"
)

// HostKind identifies the path convention of the machine we are running on.
type HostKind int

const (
	// HostPOSIX is a plain Linux/macOS host.
	HostPOSIX HostKind = iota
	// HostWSL is Linux under WSL, where Windows drives appear as /mnt/<drive>.
	HostWSL
	// HostWindows is native Windows.
	HostWindows
)

func (h HostKind) String() string {
	switch h {
	case HostWSL:
		return "wsl"
	case HostWindows:
		return "windows"
	default:
		return "posix"
	}
}

// Environment variable names consumed by the reconciler. These are the
// single authoritative spelling; nothing else in the tree hardcodes them.
const (
	EnvWarehouse    = "AI_WAREHOUSE"
	EnvRepo         = "TGW_REPO"
	EnvPlaybook     = "PLAYBOOK_ROOT"
	EnvModelsDir    = "TGW_MODELS_DIR"
	EnvHFHome       = "HF_HOME"
	EnvHubCache     = "HUGGINGFACE_HUB_CACHE"
	EnvTransformers = "TRANSFORMERS_CACHE"
	EnvDatasets     = "HF_DATASETS_CACHE"
	EnvTorchHome    = "TORCH_HOME"
)

// DetectHost reports the path convention of the current machine.
// WSL is detected via the kernel banner in /proc/version, with the
// WSL_DISTRO_NAME variable as a fallback for stripped kernels.
func DetectHost() HostKind {
	if runtime.GOOS == "windows" {
		return HostWindows
	}
	if data, err := os.ReadFile("/proc/version"); err == nil {
		if strings.Contains(strings.ToLower(string(data)), "microsoft") {
			return HostWSL
		}
	}
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return HostWSL
	}
	return HostPOSIX
}
