package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/knowhub/pkg/adapters/fs"
	"github.com/aretw0/knowhub/pkg/adapters/memory"
	"github.com/aretw0/knowhub/pkg/adapters/sqlite"
	"github.com/aretw0/knowhub/pkg/core"
)

// Open prepares the repository described by uri and the options.
// The uri is adapter-specific: a vault directory for "fs", a database file
// (or a directory to hold knowhub.db) for "sqlite", ignored for "memory".
func Open(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return open(ctx, uri, o)
}

func open(ctx context.Context, uri string, o *options) (core.Repository, error) {
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	var err error

	switch o.adapter {
	case AdapterFS, "":
		repo, err = initFS(uri, o)
	case AdapterSQLite:
		repo, err = initSQLite(uri, o)
	case AdapterMemory:
		readOnly, _ := o.config["read_only"].(bool)
		repo = memory.NewRepository(memory.WithReadOnly(readOnly))
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(ctx); err != nil {
		_ = Close(repo)
		return nil, err
	}
	return repo, nil
}

// Close releases the repository's resources, if it holds any.
func Close(repo core.Repository) error {
	if c, ok := repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// resolvePath applies the dev sandbox rules to uri.
func resolvePath(uri string, o *options) (path string, useTemp bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only access is inherently safe.
	bypassSafety := readOnly || !devSafety
	useTemp = tempDir || (IsDevRun() && !bypassSafety)
	path = ResolveVaultPath(uri, useTemp)

	if IsDevRun() {
		switch {
		case readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", path)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", path)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", path)
		}
	}
	if useTemp && path != filepath.Clean(uri) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", path)
	}
	return path, useTemp
}

// initFS builds the filesystem adapter.
func initFS(uri string, o *options) (core.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	format, _ := o.config["format"].(string)
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	path, useTemp := resolvePath(uri, o)

	versioning, explicit := o.config["versioning"].(bool)
	if !explicit {
		// Version only vaults that already are git repositories.
		_, err := os.Stat(filepath.Join(path, ".git"))
		versioning = err == nil
		if versioning {
			o.logger.Debug("auto-detected versioned vault", "path", path)
		}
	}

	return fs.NewRepository(fs.Config{
		Path:         path,
		AutoInit:     autoInit,
		MustExist:    mustExist || (!autoInit && !useTemp),
		Versioning:   versioning,
		Format:       format,
		SystemDir:    systemDir,
		ReadOnly:     readOnly,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}

// initSQLite builds the SQLite adapter. A directory uri holds knowhub.db.
func initSQLite(uri string, o *options) (core.Repository, error) {
	readOnly, _ := o.config["read_only"].(bool)
	autoInit, _ := o.config["auto_init"].(bool)

	if uri == ":memory:" {
		return sqlite.Open(uri, sqlite.WithReadOnly(readOnly))
	}

	path, _ := resolvePath(uri, o)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DatabaseMarker)
	} else if filepath.Ext(path) == "" {
		path = filepath.Join(path, DatabaseMarker)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !autoInit || readOnly {
			return nil, fmt.Errorf("database does not exist: %s", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return sqlite.Open(path, sqlite.WithReadOnly(readOnly))
}
