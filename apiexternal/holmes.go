package apiexternal

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Kellerman81/holmes_admin/config"
	"github.com/pkg/errors"
)

// HolmesClient talks to the configuration backend of a holmes media server.
type HolmesClient struct {
	Client *RLHTTPClient
}

func NewHolmesClient(cfg config.BackendConfig) *HolmesClient {
	rl, limiter := NewLimiters(cfg.LimiterSeconds, cfg.LimiterCalls)
	return &HolmesClient{Client: NewClient(cfg.BaseURL, cfg.Timeout(), cfg.UserAgent, rl, limiter)}
}

// GetFolders returns the folders of one collection in server order.
func (h *HolmesClient) GetFolders(ctx context.Context, kind FolderKind) ([]FolderEntry, error) {
	body, err := h.Client.Do(ctx, request{Method: http.MethodGet, Path: kind.ListPath()})
	if err != nil {
		return nil, errors.Wrapf(err, "get %s folders", kind)
	}
	entries, err := ParseFolderEntries(body)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s folders", kind)
	}
	return entries, nil
}

// EditFolder posts one grid operation and returns the raw answer; the caller
// decides how to read it. Add always posts the placeholder id.
func (h *HolmesClient) EditFolder(ctx context.Context, kind FolderKind, op Operation, entry FolderEntry) ([]byte, error) {
	form := url.Values{}
	form.Set("oper", string(op))
	switch op {
	case OperationAdd:
		form.Set("id", EmptyID)
		form.Set("label", entry.Label)
		form.Set("path", entry.Path)
	case OperationEdit:
		form.Set("id", entry.ID)
		form.Set("label", entry.Label)
		form.Set("path", entry.Path)
	case OperationDelete:
		form.Set("id", entry.ID)
	}
	body, err := h.Client.Do(ctx, request{Method: http.MethodPost, Path: kind.EditPath(), Form: form})
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s folder", op, kind)
	}
	return body, nil
}

func (h *HolmesClient) GetConfiguration(ctx context.Context) (Configuration, error) {
	body, err := h.Client.Do(ctx, request{Method: http.MethodGet, Path: PathGetConfiguration})
	if err != nil {
		return Configuration{}, errors.Wrap(err, "get configuration")
	}
	cfg, err := ParseConfiguration(body)
	if err != nil {
		return Configuration{}, errors.Wrap(err, "get configuration")
	}
	return cfg, nil
}

// EditConfiguration posts the mini form fields exactly as typed.
func (h *HolmesClient) EditConfiguration(ctx context.Context, values ConfigurationForm) (StatusResponse, error) {
	form := url.Values{}
	form.Set("serverName", values.ServerName)
	form.Set("httpServerPort", values.HTTPServerPort)
	form.Set("logLevel", values.LogLevel)
	body, err := h.Client.Do(ctx, request{Method: http.MethodPost, Path: PathEditConfiguration, Form: form})
	if err != nil {
		return StatusResponse{}, errors.Wrap(err, "edit configuration")
	}
	resp, err := ParseStatusResponse(body)
	if err != nil {
		return StatusResponse{}, errors.Wrap(err, "edit configuration")
	}
	return resp, nil
}

func (h *HolmesClient) GetSettings(ctx context.Context) (ServerSettings, error) {
	body, err := h.Client.Do(ctx, request{Method: http.MethodGet, Path: PathSettings})
	if err != nil {
		return ServerSettings{}, errors.Wrap(err, "get settings")
	}
	settings, err := ParseServerSettings(body)
	if err != nil {
		return ServerSettings{}, errors.Wrap(err, "get settings")
	}
	return settings, nil
}

// SaveSettings posts the whole settings form. Any 2xx answer is a success.
func (h *HolmesClient) SaveSettings(ctx context.Context, update SettingsUpdate) error {
	_, err := h.Client.Do(ctx, request{Method: http.MethodPost, Path: PathSettings, JSON: update})
	return errors.Wrap(err, "save settings")
}
