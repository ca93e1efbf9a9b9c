package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/platform"
)

// Global variable names understood by the engine.
const (
	VarProductName     = "ProductName"
	VarPublisher       = "Publisher"
	VarVersion         = "Version"
	VarTargetDir       = "TargetDir"
	VarSourceDir       = "SourceDir"
	VarOutputFile      = "OutputFile"
	VarAllUsers        = "AllUsers"
	VarRegistryKey     = "RegistryKey"
	VarUninstallerName = "UninstallerName"
	VarUninstallerPath = "UninstallerPath"

	// varTargetDirCreated is persisted into the uninstaller when the
	// installation created TargetDir.
	varTargetDirCreated = "TargetDirCreated"

	VarInstallAction    = archive.TemporaryPrefix + "InstallAction"
	VarInstalledVersion = archive.TemporaryPrefix + "InstalledVersion"
)

// Product builds the components of an archive. It only runs in the creator
// role.
type Product interface {
	CreateComponents(in *Installer) error
}

// ProductFunc adapts a function to Product.
type ProductFunc func(in *Installer) error

func (f ProductFunc) CreateComponents(in *Installer) error { return f(in) }

// Installer drives one run of the executable in whatever role its image
// carries.
type Installer struct {
	product     Product
	log         *Logger
	imagePath   string
	image       *archive.Reader
	role        archive.Role
	registrar   Registrar
	yield       func()
	forwardArgs []string
	relocate    func() bool

	mu           sync.Mutex
	listeners    []Listener
	status       Status
	progress     int
	progressText string

	varsMu     sync.RWMutex
	vars       archive.Dictionary
	components []*Component

	interrupted atomic.Bool
}

// Option configures an Installer.
type Option func(*Installer)

// WithImagePath reads the archive from path instead of the running
// executable.
func WithImagePath(path string) Option {
	return func(in *Installer) { in.imagePath = path }
}

// WithLogger sets the logger. The default keeps lines in memory only.
func WithLogger(l *Logger) Option {
	return func(in *Installer) { in.log = l }
}

// WithVariables sets variables before the archived ones are merged, so
// these values win.
func WithVariables(vars map[string]string) Option {
	return func(in *Installer) {
		for k, v := range vars {
			in.vars.SetValue(k, v)
		}
	}
}

// WithYield sets a function called after every task, giving a UI the chance
// to repaint and deliver an Interrupt.
func WithYield(fn func()) Option {
	return func(in *Installer) { in.yield = fn }
}

// WithRegistrar replaces the system uninstall registry.
func WithRegistrar(r Registrar) Option {
	return func(in *Installer) { in.registrar = r }
}

// WithListener subscribes l before anything is emitted.
func WithListener(l Listener) Option {
	return func(in *Installer) { in.Subscribe(l) }
}

// WithForwardedArgs sets the arguments passed on when the uninstaller
// relaunches itself from a temporary copy.
func WithForwardedArgs(args []string) Option {
	return func(in *Installer) { in.forwardArgs = args }
}

// New opens the image, detects the role from its trailer and, for every role
// but the creator, loads the archived component and global variables.
func New(product Product, opts ...Option) (*Installer, error) {
	in := &Installer{
		product:  product,
		vars:     archive.Dictionary{},
		status:   StatusUnfinished,
		relocate: platform.NeedsRelocatedUninstall,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.log == nil {
		in.log = NewMemoryLogger()
	}
	if in.registrar == nil {
		in.registrar = PlatformRegistrar{}
	}
	if in.imagePath == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		in.imagePath = exe
	}

	image, err := archive.Open(in.imagePath)
	if err != nil {
		return nil, err
	}
	in.image = image
	in.role = image.Role()

	componentVars, global, err := image.ReadVariables()
	if err != nil {
		image.Close()
		return nil, fmt.Errorf("read archive variables: %w", err)
	}
	for _, d := range componentVars {
		in.components = append(in.components, newComponent(in, d))
	}
	in.vars.MergeMissing(global)

	in.log.Info("Image: %s (%s, %d bytes, %d components)",
		in.imagePath, in.role, image.Size(), len(in.components))
	return in, nil
}

// Close releases the image.
func (in *Installer) Close() error {
	if in.image == nil {
		return nil
	}
	err := in.image.Close()
	in.image = nil
	return err
}

// Role returns the role detected at startup.
func (in *Installer) Role() archive.Role { return in.role }

// ImagePath returns the file the archive is read from.
func (in *Installer) ImagePath() string { return in.imagePath }

// Logger returns the logger. It is never nil.
func (in *Installer) Logger() *Logger { return in.log }

// Value returns a global variable, or "" if it is not set.
func (in *Installer) Value(key string) string {
	in.varsMu.RLock()
	defer in.varsMu.RUnlock()
	return in.vars.Value(key)
}

// SetValue sets a global variable.
func (in *Installer) SetValue(key, value string) {
	in.varsMu.Lock()
	in.vars.SetValue(key, value)
	in.varsMu.Unlock()
}

// ContainsValue reports whether a global variable is set.
func (in *Installer) ContainsValue(key string) bool {
	in.varsMu.RLock()
	defer in.varsMu.RUnlock()
	return in.vars.Contains(key)
}

// Variables returns a copy of the global variables.
func (in *Installer) Variables() archive.Dictionary {
	in.varsMu.RLock()
	defer in.varsMu.RUnlock()
	return in.vars.Clone()
}

// DumpVariables writes the global variables to w, sorted by name.
func (in *Installer) DumpVariables(w io.Writer) error {
	vars := in.Variables()
	for _, k := range vars.Keys() {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, vars[k]); err != nil {
			return err
		}
	}
	return nil
}

// Components returns the components in archive order.
func (in *Installer) Components() []*Component { return in.components }

// Component returns the component called name, or nil.
func (in *Installer) Component(name string) *Component {
	for _, c := range in.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// AddComponent appends a new, empty component called name.
func (in *Installer) AddComponent(name string) *Component {
	c := newComponent(in, archive.Dictionary{VarName: name})
	in.components = append(in.components, c)
	return c
}

// Status returns the outcome of the run so far.
func (in *Installer) Status() Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status
}

// InstallationProgress returns the percentage complete, 0-100.
func (in *Installer) InstallationProgress() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.progress
}

// InstallationProgressText returns the current progress line.
func (in *Installer) InstallationProgressText() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.progressText
}

// SetProgressText publishes a progress line.
func (in *Installer) SetProgressText(text string) {
	in.mu.Lock()
	in.progressText = text
	progress := in.progress
	in.mu.Unlock()
	in.log.Debug("%s", text)
	in.emit(Event{Type: ProgressChanged, Progress: progress, Text: text})
}

func (in *Installer) setProgress(percent int) {
	percent = min(max(percent, 0), 100)
	in.mu.Lock()
	changed := in.progress != percent
	in.progress = percent
	text := in.progressText
	in.mu.Unlock()
	if changed {
		in.emit(Event{Type: ProgressChanged, Progress: percent, Text: text})
	}
}

// Interrupt asks the run to stop before the next task. It is safe to call
// from any goroutine.
func (in *Installer) Interrupt() {
	if !in.interrupted.Swap(true) {
		in.log.Warn("Interrupt requested")
	}
}

// ShowWarning logs text and passes it to the listeners.
func (in *Installer) ShowWarning(text string) {
	in.log.Warn("%s", text)
	in.emit(Event{Type: Warning, Text: text})
}

func (in *Installer) checkCancelled(ctx context.Context) error {
	if in.interrupted.Load() {
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

func (in *Installer) yieldToUI() {
	if in.yield != nil {
		in.yield()
	}
}

// setFinalStatus records status unless the run already ended and returns
// the status in effect.
func (in *Installer) setFinalStatus(status Status) Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.status == StatusUnfinished {
		in.status = status
	}
	return in.status
}

// statusFor maps a run error to its final status.
func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSucceeded
	case errors.Is(err, ErrCancelled):
		return StatusCanceledByUser
	default:
		return StatusFailed
	}
}

// finish records the final status and emits event.
func (in *Installer) finish(event EventType, status Status) {
	status = in.setFinalStatus(status)
	in.log.Step("%s: %s", event, status)
	in.emit(Event{Type: event, Status: status, Progress: in.InstallationProgress()})
}

// fail ends a run that never started any work.
func (in *Installer) fail(err error) error {
	in.log.Error("%v", err)
	in.setFinalStatus(statusFor(err))
	return err
}

// Run performs the work of the detected role. It can only be called once.
func (in *Installer) Run(ctx context.Context) error {
	if in.Status() != StatusUnfinished {
		return errors.New("installer already ran")
	}
	if in.image == nil {
		return errors.New("installer is closed")
	}
	in.log.Step("Running as %s", in.role)

	switch in.role {
	case archive.RoleCreator:
		return in.create(ctx)
	case archive.RoleInstaller:
		return in.install(ctx)
	case archive.RoleUninstaller:
		if in.relocate != nil && in.relocate() {
			return in.relocateUninstaller()
		}
		return in.uninstall(ctx)
	case archive.RoleTempUninstaller:
		return in.uninstall(ctx)
	default:
		return in.fail(fmt.Errorf("unknown role %s", in.role))
	}
}

// absTargetDir makes TargetDir absolute so the registry and the uninstaller
// never depend on the working directory.
func (in *Installer) absTargetDir() (string, error) {
	dir := in.Value(VarTargetDir)
	if dir == "" {
		return "", MissingVariable(VarTargetDir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ConfigError{Variable: VarTargetDir, Reason: err.Error()}
	}
	if abs != dir {
		in.SetValue(VarTargetDir, abs)
	}
	return abs, nil
}
