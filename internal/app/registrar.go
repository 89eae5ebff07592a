package app

import (
	"os"
	"path/filepath"

	"github.com/dokzlo13/espresso-hue/internal/actions"
	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/server"
)

// registrar routes plugin contributions into the host registries and HTTP server.
type registrar struct {
	actions *actions.Registry
	options *actions.Options
	server  *server.Server
}

func (r *registrar) RegisterAction(action host.Action) error {
	return r.actions.Register(action)
}

func (r *registrar) RegisterOptions(source host.OptionSource) error {
	return r.options.Register(source)
}

func (r *registrar) RegisterRoute(route host.Route) error {
	return r.server.RegisterRoute(route)
}

// pluginPaths resolves <plugin_dir>/<name> install directories.
type pluginPaths struct {
	root string
}

// Path returns the plugin's directory, ok is false when it does not exist.
func (p pluginPaths) Path(name string) (string, bool) {
	dir := filepath.Join(p.root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}
