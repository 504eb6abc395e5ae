package warehouse

import "strings"

// Layout is the canonical set of shared-cache locations derived from a
// warehouse root. All fields are native absolute paths for the host the
// layout was resolved for.
type Layout struct {
	Root              string
	ModelsDir         string
	HFHome            string
	HubCache          string
	TransformersCache string
	DatasetsCache     string
	TorchHome         string
}

// DefaultRoot returns the built-in warehouse root for the host.
func DefaultRoot(host HostKind) string {
	if host == HostWindows {
		return `C:\AI_LLM_projects\ai_warehouse`
	}
	return "/mnt/c/AI_LLM_projects/ai_warehouse"
}

// Resolve computes the layout under root. The root may be given in any
// recognized syntax (native, C:\, /c/, /mnt/c/); it is translated to the
// host convention first. Pure function of its inputs.
func Resolve(root string, host HostKind) (Layout, error) {
	native, err := ToNative(root, host)
	if err != nil {
		return Layout{}, err
	}
	hf := join(host, native, "cache", "huggingface")
	return Layout{
		Root:              native,
		ModelsDir:         join(host, native, "models", "llm"),
		HFHome:            hf,
		HubCache:          join(host, hf, "hub"),
		TransformersCache: join(host, hf, "transformers"),
		DatasetsCache:     join(host, hf, "datasets"),
		TorchHome:         join(host, native, "cache", "torch"),
	}, nil
}

// CacheDirs lists the framework cache directories in creation order.
func (l Layout) CacheDirs() []string {
	return []string{l.HFHome, l.HubCache, l.TransformersCache, l.DatasetsCache, l.TorchHome}
}

// ExpectedEnv maps each cache-related environment variable to the value
// the layout implies. Used by the auditor to report value drift.
func (l Layout) ExpectedEnv() map[string]string {
	return map[string]string{
		EnvWarehouse:    l.Root,
		EnvModelsDir:    l.ModelsDir,
		EnvHFHome:       l.HFHome,
		EnvHubCache:     l.HubCache,
		EnvTransformers: l.TransformersCache,
		EnvDatasets:     l.DatasetsCache,
		EnvTorchHome:    l.TorchHome,
	}
}

// join builds a child path using the host's separator. The base is
// assumed native already.
func join(host HostKind, base string, elems ...string) string {
	sep := "/"
	if host == HostWindows {
		sep = `\`
	}
	out := strings.TrimSuffix(base, sep)
	for _, e := range elems {
		out += sep + e
	}
	return out
}
