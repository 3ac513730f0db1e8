package prodsearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/prodsearch/archive"
	"github.com/hupe1980/prodsearch/blobstore"
	"github.com/hupe1980/prodsearch/blobstore/minio"
	"github.com/hupe1980/prodsearch/blobstore/s3"
	"github.com/hupe1980/prodsearch/codec"
	"github.com/hupe1980/prodsearch/sink/sqlite"
)

// ErrInvalidConfig is returned by LoadConfig and ParseConfig for a
// configuration that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the file form of a search. Every field is optional except Limit.
//
//	start: 1
//	limit: 1000000000
//	chunk_size: 500000
//	workers: 0
//	output: found.txt
//	state: state.json
//	log:
//	  level: info
//	  format: json
//	archive:
//	  backend: s3
//	  bucket: my-bucket
//	  prefix: runs/a
//	  ddb_table: prodsearch-commits
//	  every: 20
//	  keep: 3
//	sqlite:
//	  path: results.db
type Config struct {
	Start     *uint64       `yaml:"start"`
	Limit     uint64        `yaml:"limit"`
	ChunkSize uint64        `yaml:"chunk_size"`
	Workers   int           `yaml:"workers"`
	Output    string        `yaml:"output"`
	State     string        `yaml:"state"`
	Fresh     bool          `yaml:"fresh"`
	Codec     string        `yaml:"codec"`
	Log       LogConfig     `yaml:"log"`
	Archive   ArchiveConfig `yaml:"archive"`
	SQLite    SQLiteConfig  `yaml:"sqlite"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error; empty disables logging
	Format string `yaml:"format"` // text or json
}

// ArchiveConfig selects the snapshot backend.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"` // local, minio, s3; empty disables archiving
	Root        string `yaml:"root"`    // local
	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Secure      bool   `yaml:"secure"`
	Region      string `yaml:"region"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	DDBTable    string `yaml:"ddb_table"` // s3 only; commits LATEST through DynamoDB
	Compression string `yaml:"compression"`
	Every       int    `yaml:"every"`
	Keep        int    `yaml:"keep"`
}

// SQLiteConfig enables the SQLite sink.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates YAML.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that New and Run would otherwise reject later.
func (c *Config) Validate() error {
	if err := c.Range().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk_size %d exceeds %d", ErrInvalidConfig, c.ChunkSize, MaxChunkSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	}
	if c.Codec != "" {
		if _, ok := codec.ByName(c.Codec); !ok {
			return fmt.Errorf("%w: unknown codec %q", ErrInvalidConfig, c.Codec)
		}
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	if _, err := archive.ParseCompression(c.Archive.Compression); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Archive.Backend {
	case "":
	case "local":
		if c.Archive.Root == "" {
			return fmt.Errorf("%w: archive.root is required for the local backend", ErrInvalidConfig)
		}
	case "minio":
		if c.Archive.Endpoint == "" || c.Archive.Bucket == "" {
			return fmt.Errorf("%w: archive.endpoint and archive.bucket are required for minio", ErrInvalidConfig)
		}
	case "s3":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("%w: archive.bucket is required for s3", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown archive backend %q", ErrInvalidConfig, c.Archive.Backend)
	}
	return nil
}

// Range returns the configured range. Start defaults to DefaultStart.
func (c *Config) Range() Range {
	start := uint64(DefaultStart)
	if c.Start != nil {
		start = *c.Start
	}
	return Range{Start: start, Limit: c.Limit}
}

func (c *Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, fmt.Errorf("%w: log level: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

// Logger returns the configured logger, or NoopLogger when no level is set.
func (c *Config) Logger() *Logger {
	if c.Log.Level == "" {
		return NoopLogger()
	}
	level, _ := c.logLevel()
	if c.Log.Format == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}

// Options returns the Searcher options for the plain fields. Archiver and sink
// need resources; see OpenArchiver and OpenSink.
func (c *Config) Options() []Option {
	opts := []Option{
		WithWorkers(c.Workers),
		WithFresh(c.Fresh),
		WithLogger(c.Logger()),
	}
	if c.ChunkSize > 0 {
		opts = append(opts, WithChunkSize(c.ChunkSize))
	}
	if c.Output != "" {
		opts = append(opts, WithOutputPath(c.Output))
	}
	if c.State != "" {
		opts = append(opts, WithStatePath(c.State))
	}
	if c.Codec != "" {
		cd, _ := codec.ByName(c.Codec)
		opts = append(opts, WithCodec(cd))
	}
	return opts
}

// OpenArchiver connects the configured blob store. It returns nil when
// archiving is disabled.
func (c *Config) OpenArchiver(ctx context.Context) (*archive.Archiver, error) {
	ac := c.Archive
	if ac.Backend == "" {
		return nil, nil
	}

	var store blobstore.Store
	switch ac.Backend {
	case "local":
		store = blobstore.NewLocalStore(ac.Root)
	case "minio":
		ms, err := minio.Dial(ac.Endpoint, ac.AccessKey, ac.SecretKey, ac.Secure, ac.Bucket, ac.Prefix)
		if err != nil {
			return nil, err
		}
		store = ms
	case "s3":
		optFns := []func(*s3.Options){s3.WithPrefix(ac.Prefix)}
		if ac.Region != "" {
			optFns = append(optFns, s3.WithRegion(ac.Region))
		}
		if ac.Endpoint != "" {
			optFns = append(optFns, s3.WithEndpoint(ac.Endpoint, true))
		}
		ss, err := s3.New(ctx, ac.Bucket, optFns...)
		if err != nil {
			return nil, err
		}
		store = ss
		if ac.DDBTable != "" {
			cs, err := s3.DialCommitStore(ctx, ss, ac.DDBTable, ac.Region)
			if err != nil {
				return nil, err
			}
			store = cs
		}
	default:
		return nil, fmt.Errorf("%w: unknown archive backend %q", ErrInvalidConfig, ac.Backend)
	}

	comp, err := archive.ParseCompression(ac.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return archive.New(store, func(o *archive.Options) {
		o.Compression = comp
		o.Keep = ac.Keep
		if ac.Backend == "local" {
			o.Prefix = ac.Prefix
		}
	}), nil
}

// OpenSink opens the configured SQLite sink. It returns nil when no path is set.
func (c *Config) OpenSink() (*sqlite.Sink, error) {
	if c.SQLite.Path == "" {
		return nil, nil
	}
	return sqlite.Open(c.SQLite.Path)
}

// Searcher opens the archiver and sink and builds a Searcher. The returned
// close function releases the sink.
func (c *Config) Searcher(ctx context.Context, extra ...Option) (*Searcher, func() error, error) {
	opts := c.Options()

	a, err := c.OpenArchiver(ctx)
	if err != nil {
		return nil, nil, err
	}
	if a != nil {
		opts = append(opts, WithArchiver(a, c.Archive.Every))
	}

	closeFn := func() error { return nil }
	sink, err := c.OpenSink()
	if err != nil {
		return nil, nil, err
	}
	if sink != nil {
		opts = append(opts, WithSink(sink))
		closeFn = sink.Close
	}

	s, err := New(append(opts, extra...)...)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}
