package apiexternal

import (
	"fmt"
	"strings"

	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// FolderKind selects one of the four folder collections of the backend.
type FolderKind string

const (
	FolderVideo   FolderKind = "video"
	FolderAudio   FolderKind = "audio"
	FolderPicture FolderKind = "picture"
	FolderPodcast FolderKind = "podcast"
)

// FolderKinds lists the collections in the order the admin page shows them.
var FolderKinds = []FolderKind{FolderVideo, FolderAudio, FolderPicture, FolderPodcast}

type folderEndpoints struct {
	list string
	edit string
}

var folderPaths = map[FolderKind]folderEndpoints{
	FolderVideo:   {list: "/backend/configuration/getVideoFolders", edit: "/backend/configuration/editVideoFolder"},
	FolderAudio:   {list: "/backend/configuration/getAudioFolders", edit: "/backend/configuration/editAudioFolder"},
	FolderPicture: {list: "/backend/configuration/getPictureFolders", edit: "/backend/configuration/editPictureFolder"},
	FolderPodcast: {list: "/backend/configuration/getPodcasts", edit: "/backend/configuration/editPodcast"},
}

const (
	PathGetConfiguration  = "/backend/configuration/getConfiguration"
	PathEditConfiguration = "/backend/configuration/editConfiguration"
	PathSettings          = "/backend/settings"
)

// ParseFolderKind accepts the kind names used in console routes.
func ParseFolderKind(s string) (FolderKind, error) {
	kind := FolderKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := folderPaths[kind]; !ok {
		return "", fmt.Errorf("unknown folder kind %q", s)
	}
	return kind, nil
}

func (k FolderKind) ListPath() string {
	return folderPaths[k].list
}

func (k FolderKind) EditPath() string {
	return folderPaths[k].edit
}

// FolderEntry is one configured media folder, or a podcast feed when Path holds a URL.
// ID stays empty until the backend has assigned one.
type FolderEntry struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Operation is the grid edit operation sent as "oper".
type Operation string

const (
	OperationEdit   Operation = "edit"
	OperationAdd    Operation = "add"
	OperationDelete Operation = "del"
)

// EmptyID is the placeholder id the grid posts for rows the backend has not seen yet.
const EmptyID = "_empty"

func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.TrimSpace(s)); op {
	case OperationEdit, OperationAdd, OperationDelete:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// EditResponse acknowledges an add, edit or delete.
type EditResponse struct {
	Operation Operation `json:"operation"`
	Status    bool      `json:"status"`
	Message   string    `json:"message"`
	ID        string    `json:"id,omitempty"`
}

// Configuration is the payload of the mini settings form.
type Configuration struct {
	ServerName     string `json:"serverName"`
	HTTPServerPort int    `json:"httpServerPort"`
	LogLevel       string `json:"logLevel"`
}

// ConfigurationForm carries the mini form fields verbatim, as the browser posts them.
type ConfigurationForm struct {
	ServerName     string
	HTTPServerPort string
	LogLevel       string
}

// StatusResponse is the answer of editConfiguration.
type StatusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// ServerSettings is the settings singleton. It is always replaced as a whole.
type ServerSettings struct {
	ServerName             string `json:"serverName"`
	HTTPServerPort         int    `json:"httpServerPort"`
	LogLevel               string `json:"logLevel"`
	PrependPodcastItem     bool   `json:"prependPodcastItem"`
	EnableIcecastDirectory bool   `json:"enableIcecastDirectory"`
}

// SettingsUpdate is the save body of the settings view. The flags travel as the
// strings "true" and "false", which is what the backend binds.
type SettingsUpdate struct {
	ServerName             string `json:"serverName"`
	PrependPodcastItem     string `json:"prependPodcastItem"`
	EnableIcecastDirectory string `json:"enableIcecastDirectory"`
}

// NewSettingsUpdate builds the save body from the form values.
func NewSettingsUpdate(serverName string, prependPodcastItem, enableIcecastDirectory bool) SettingsUpdate {
	return SettingsUpdate{
		ServerName:             strings.TrimSpace(serverName),
		PrependPodcastItem:     cast.ToString(prependPodcastItem),
		EnableIcecastDirectory: cast.ToString(enableIcecastDirectory),
	}
}

// LogLevels are the values offered by the mini form select.
var LogLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

func decodeObject(target string, body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewParse(target, body, err)
	}
	if raw == nil {
		return nil, apperrors.NewParse(target, body, fmt.Errorf("expected a json object"))
	}
	return raw, nil
}

func requiredString(target string, body []byte, raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", apperrors.NewParse(target, body, fmt.Errorf("missing field %q", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", apperrors.NewParse(target, body, fmt.Errorf("field %q is not a string", key))
	}
	return s, nil
}

func optionalString(target string, body []byte, raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", apperrors.NewParse(target, body, fmt.Errorf("field %q: %w", key, err))
	}
	return s, nil
}

func requiredBool(target string, body []byte, raw map[string]any, key string) (bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return false, apperrors.NewParse(target, body, fmt.Errorf("missing field %q", key))
	}
	switch tv := v.(type) {
	case bool:
		return tv, nil
	case string:
		if tv == "true" || tv == "false" {
			return tv == "true", nil
		}
	}
	return false, apperrors.NewParse(target, body, fmt.Errorf("field %q is not a boolean", key))
}

func optionalInt(target string, body []byte, raw map[string]any, key string) (int, error) {
	v, ok := raw[key]
	if !ok || v == nil || v == "" {
		return 0, nil
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, apperrors.NewParse(target, body, fmt.Errorf("field %q: %w", key, err))
	}
	return i, nil
}

// ParseFolderEntries decodes a folder list, keeping the server order.
func ParseFolderEntries(body []byte) ([]FolderEntry, error) {
	const target = "FolderEntry list"
	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewParse(target, body, err)
	}
	entries := make([]FolderEntry, 0, len(raw))
	for idx := range raw {
		if raw[idx] == nil {
			return nil, apperrors.NewParse(target, body, fmt.Errorf("entry %d is null", idx))
		}
		id, err := optionalString(target, body, raw[idx], "id")
		if err != nil {
			return nil, err
		}
		label, err := optionalString(target, body, raw[idx], "label")
		if err != nil {
			return nil, err
		}
		path, err := optionalString(target, body, raw[idx], "path")
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, apperrors.NewParse(target, body, fmt.Errorf("entry %d has no id", idx))
		}
		entries = append(entries, FolderEntry{ID: id, Label: label, Path: path})
	}
	return entries, nil
}

// ParseEditResponse decodes an EditResponse. Unknown operations are parse errors.
func ParseEditResponse(body []byte) (EditResponse, error) {
	const target = "EditResponse"
	raw, err := decodeObject(target, body)
	if err != nil {
		return EditResponse{}, err
	}
	opv, err := requiredString(target, body, raw, "operation")
	if err != nil {
		return EditResponse{}, err
	}
	op, err := ParseOperation(opv)
	if err != nil {
		return EditResponse{}, apperrors.NewParse(target, body, err)
	}
	status, err := requiredBool(target, body, raw, "status")
	if err != nil {
		return EditResponse{}, err
	}
	message, err := optionalString(target, body, raw, "message")
	if err != nil {
		return EditResponse{}, err
	}
	id, err := optionalString(target, body, raw, "id")
	if err != nil {
		return EditResponse{}, err
	}
	return EditResponse{Operation: op, Status: status, Message: message, ID: id}, nil
}

func ParseConfiguration(body []byte) (Configuration, error) {
	const target = "Configuration"
	raw, err := decodeObject(target, body)
	if err != nil {
		return Configuration{}, err
	}
	var cfg Configuration
	if cfg.ServerName, err = requiredString(target, body, raw, "serverName"); err != nil {
		return Configuration{}, err
	}
	if cfg.HTTPServerPort, err = optionalInt(target, body, raw, "httpServerPort"); err != nil {
		return Configuration{}, err
	}
	if cfg.LogLevel, err = optionalString(target, body, raw, "logLevel"); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func ParseStatusResponse(body []byte) (StatusResponse, error) {
	const target = "StatusResponse"
	raw, err := decodeObject(target, body)
	if err != nil {
		return StatusResponse{}, err
	}
	var resp StatusResponse
	if resp.Status, err = requiredBool(target, body, raw, "status"); err != nil {
		return StatusResponse{}, err
	}
	if resp.Message, err = optionalString(target, body, raw, "message"); err != nil {
		return StatusResponse{}, err
	}
	return resp, nil
}

func ParseServerSettings(body []byte) (ServerSettings, error) {
	const target = "ServerSettings"
	raw, err := decodeObject(target, body)
	if err != nil {
		return ServerSettings{}, err
	}
	var s ServerSettings
	if s.ServerName, err = requiredString(target, body, raw, "serverName"); err != nil {
		return ServerSettings{}, err
	}
	if s.HTTPServerPort, err = optionalInt(target, body, raw, "httpServerPort"); err != nil {
		return ServerSettings{}, err
	}
	if s.LogLevel, err = optionalString(target, body, raw, "logLevel"); err != nil {
		return ServerSettings{}, err
	}
	if s.PrependPodcastItem, err = requiredBool(target, body, raw, "prependPodcastItem"); err != nil {
		return ServerSettings{}, err
	}
	if s.EnableIcecastDirectory, err = requiredBool(target, body, raw, "enableIcecastDirectory"); err != nil {
		return ServerSettings{}, err
	}
	return s, nil
}
