package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joshuapare/regkit/internal/logger"
	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/registry"
	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/store/memstore"
	"github.com/joshuapare/regkit/pkg/types"
)

// session is what a command runs against: a client over either the live
// registry or an in-memory store loaded from a .reg file.
type session struct {
	client   *registry.Client
	store    store.Store
	log      *slog.Logger
	closeLog func() error

	// file is the backing .reg file; "" for the live registry.
	file     string
	encoding string
}

func openSession(cfg settings) (*session, error) {
	level, err := registry.ParseDebugLevel(cfg.Debug)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logger.New(logger.Options{
		Verbose: verbose,
		Quiet:   quiet,
		JSON:    jsonOut,
		LogDir:  cfg.LogDir,
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	s := &session{log: log, closeLog: closeLog, file: cfg.File, encoding: cfg.Encoding}
	if s.encoding == "" {
		s.encoding = defaultEncoding
	}
	if s.file != "" {
		s.store = memstore.New()
	} else if s.store, err = nativeStore(); err != nil {
		closeLog()
		return nil, err
	}

	form := types.ShortNames
	if cfg.LongNames {
		form = types.LongNames
	}
	s.client = registry.New(s.store, &registry.Options{Logger: log, Debug: level, NameForm: form})

	if err := s.load(); err != nil {
		closeLog()
		return nil, err
	}
	return s, nil
}

// load seeds the in-memory store from the backing file. A file that does
// not exist yet starts out empty.
func (s *session) load() error {
	if s.file == "" {
		return nil
	}
	f, err := os.Open(s.file)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("starting with an empty store", "file", s.file)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	touched, err := s.client.Import(f, nil)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.file, err)
	}
	s.log.Debug("loaded .reg file", "file", s.file, "keys", len(touched))
	return nil
}

// commit writes the in-memory store back to the backing file. It does
// nothing for the live registry.
func (s *session) commit() error {
	if s.file == "" {
		return nil
	}

	var roots []string
	for _, h := range types.Hives() {
		root := regpath.Format(h, "", types.ShortNames)
		subkeys, err := s.client.ListSubkeys(root, registry.DepthChildren)
		if err != nil {
			return err
		}
		values, err := s.client.ListValues(root)
		if err != nil {
			return err
		}
		if len(subkeys) > 0 || len(values) > 0 {
			roots = append(roots, root)
		}
	}

	var buf bytes.Buffer
	if err := s.client.ExportKeys(&buf, roots, &registry.ExportOptions{Encoding: s.encoding}); err != nil {
		return err
	}
	if err := writeFileAtomic(s.file, buf.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", s.file, err)
	}
	s.log.Debug("saved .reg file", "file", s.file, "hives", len(roots))
	return nil
}

func (s *session) close() {
	if s.closeLog != nil {
		s.closeLog()
	}
}

// writeFileAtomic replaces path through a temporary file in the same
// directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
