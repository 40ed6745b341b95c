package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"optreg/cmd/optreg/option"
	"optreg/cmd/optreg/optionyaml"
	"optreg/pkg/lib"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// reloadDebounce coalesces the burst of events editors emit for one save.
const reloadDebounce = 150 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the values file whenever it changes",
	Long: "Watch the YAML values file and reload it on every change, printing the\n" +
		"options whose value changed. A file that fails validation is reported and\n" +
		"the previous values are kept. Stop with Ctrl+C.",
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if s.cfg.Store != storeYAML {
			return usageErrorf("watch requires the %s store, configured store is %s", storeYAML, s.cfg.Store)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchValues(ctx, s, cmd.OutOrStdout())
	},
}

// watchValues blocks until ctx is done. The loop goroutine is the only
// mutator of s.reg.
func watchValues(ctx context.Context, s *session, w io.Writer) error {
	log := lib.LoggerFrom(ctx)

	target, err := filepath.Abs(s.cfg.ValuesFile)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file rather than
	// writing it in place, which drops a watch on the file itself.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Fprintf(w, "watching %s\n", target)
	printEntries(w, collectEntries(s.reg))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("values file event", "op", ev.Op.String(), "file", ev.Name)
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)

		case <-fire:
			fire = nil
			changes, err := s.reload()
			if err != nil {
				log.Warn("reload failed", "err", err)
				fmt.Fprintf(w, "reload failed, keeping previous values: %v\n", err)
				continue
			}
			if len(changes) == 0 {
				fmt.Fprintln(w, "reloaded, no changes")
				continue
			}
			for _, c := range changes {
				fmt.Fprintf(w, "%s: %s -> %s\n", c.name, c.from, c.to)
			}
		}
	}
}

// valueChange is one option whose value differs after a reload.
type valueChange struct {
	name     string
	from, to string
}

// reload rebuilds the registry from the schema files and the values file,
// applies the --set overrides again and swaps it in only if everything loads
// cleanly. A missing values file means every option is back to its default.
func (s *session) reload() ([]valueChange, error) {
	fresh, err := buildRegistry(s.cfg.SchemaFiles)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.cfg.ValuesFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("values file %s: %w", s.cfg.ValuesFile, err)
	default:
		if err := optionyaml.ApplyValues(fresh, data); err != nil {
			return nil, fmt.Errorf("values file %s: %w", s.cfg.ValuesFile, err)
		}
	}
	if err := applyOverrides(fresh, s.overrides); err != nil {
		return nil, err
	}

	changes := diffValues(s.reg, fresh)
	s.reg = fresh
	return changes, nil
}

// diffValues lists options of next whose value differs from prev, in next's
// declaration order. Options new in next are reported against "".
func diffValues(prev, next *option.Registry) []valueChange {
	var out []valueChange
	for _, name := range next.Names() {
		after, _ := next.Get(name)
		before, err := prev.Get(name)
		if err == nil && before == after {
			continue
		}
		from := ""
		if err == nil {
			from = option.Format(before)
		}
		out = append(out, valueChange{name: name, from: from, to: option.Format(after)})
	}
	return out
}
