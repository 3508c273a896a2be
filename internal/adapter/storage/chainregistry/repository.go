package chainregistry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	dto "miniwallet/internal/adapter/storage/chainregistry/dto"
	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"
	domainRepo "miniwallet/internal/domain/repository"
	"miniwallet/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Compile-time checks
var (
	_ domainRepo.ChainRepository = (*LocalRepository)(nil)
	_ domainRepo.ChainRepository = (*RemoteRepository)(nil)
)

const remoteFetchTimeout = 15 * time.Second

// decodeDocuments accepts a single chain document or an array of them, as JSON or YAML.
func decodeDocuments(data []byte, isYAML bool) ([]dto.ChainRaw, error) {
	if isYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		data = converted
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []dto.ChainRaw
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("parse chain list: %w", err)
		}
		return raws, nil
	}
	var raw dto.ChainRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse chain document: %w", err)
	}
	return []dto.ChainRaw{raw}, nil
}

// LocalRepository reads every *.json, *.yaml and *.yml document of a directory.
type LocalRepository struct {
	dir    string
	logger *zap.Logger
}

func NewLocalRepository(dir string, logger *zap.Logger) *LocalRepository {
	return &LocalRepository{dir: dir, logger: logger.Named("ChainRegistryLocal")}
}

// GetAllChains loads the documents in file name order. Unreadable or invalid documents are
// logged and skipped.
func (r *LocalRepository) GetAllChains(ctx context.Context) ([]entity.ChainConfig, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read chain directory %s: %v", apperrors.ErrNotFound, r.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var chains []entity.ChainConfig
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(r.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Error("Failed to read chain document", zap.String("path", path), zap.Error(err))
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		raws, err := decodeDocuments(data, ext == ".yaml" || ext == ".yml")
		if err != nil {
			r.logger.Error("Failed to decode chain document", zap.String("path", path), zap.Error(err))
			continue
		}
		chains = append(chains, toDomainChains(raws, r.logger.With(zap.String("path", path)))...)
	}

	r.logger.Info("Loaded chain documents", zap.String("dir", r.dir), zap.Int("files", len(names)), zap.Int("chains", len(chains)))
	return chains, nil
}

// RemoteRepository fetches chain documents from a chain-registry URL.
type RemoteRepository struct {
	client *fasthttp.Client
	url    string
	logger *zap.Logger
}

// NewRemoteRepository creates the repository for cfg.RegistryURL.
func NewRemoteRepository(cfg config.ChainsConfig, logger *zap.Logger) *RemoteRepository {
	return &RemoteRepository{
		client: &fasthttp.Client{},
		url:    cfg.RegistryURL,
		logger: logger.Named("ChainRegistryRemote"),
	}
}

// GetAllChains fetches the document (or list of documents) at the configured URL.
func (r *RemoteRepository) GetAllChains(ctx context.Context) ([]entity.ChainConfig, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := remoteFetchTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	r.logger.Debug("Fetching chain registry", zap.String("url", r.url), zap.Duration("timeout", timeout))

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		r.logger.Error("Failed to execute request to chain registry", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to execute request to chain registry: %v",
			apperrors.ErrExternalServiceFailure, err,
		)
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		r.logger.Warn("Chain registry reported not found", zap.Int("statusCode", resp.StatusCode()))
		return nil, fmt.Errorf("%w: chain registry reported not found (%s)", apperrors.ErrNotFound, r.url)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error("Chain registry returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()[:min(512, len(resp.Body()))]),
		)
		return nil, fmt.Errorf("%w: chain registry returned status %d",
			apperrors.ErrExternalServiceFailure, resp.StatusCode(),
		)
	}

	body := resp.Body()
	if bytes.EqualFold(resp.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		r.logger.Debug("Received gzipped response from chain registry")
		unzipped, err := resp.BodyGunzip()
		if err != nil {
			r.logger.Error("Failed to gunzip chain registry response body", zap.Error(err))
			return nil, fmt.Errorf("%w: failed to decompress chain registry response: %v",
				apperrors.ErrExternalServiceFailure, err,
			)
		}
		body = unzipped
	}

	isYAML := strings.HasSuffix(r.url, ".yaml") || strings.HasSuffix(r.url, ".yml") ||
		bytes.Contains(resp.Header.ContentType(), []byte("yaml"))
	raws, err := decodeDocuments(body, isYAML)
	if err != nil {
		r.logger.Error("Failed to decode chain registry response",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: failed to parse chain registry response: %v",
			apperrors.ErrExternalServiceFailure, err,
		)
	}

	chains := toDomainChains(raws, r.logger)
	r.logger.Info("Fetched chain registry", zap.Int("documents", len(raws)), zap.Int("chains", len(chains)))
	return chains, nil
}
