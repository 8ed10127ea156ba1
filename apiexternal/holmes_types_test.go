package apiexternal

import (
	"testing"

	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFolderKind(t *testing.T) {
	for _, kind := range FolderKinds {
		got, err := ParseFolderKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}
	got, err := ParseFolderKind(" Podcast ")
	require.NoError(t, err)
	assert.Equal(t, FolderPodcast, got)

	_, err = ParseFolderKind("music")
	assert.Error(t, err)
}

func TestParseEditResponse(t *testing.T) {
	resp, err := ParseEditResponse([]byte(`{"operation":"edit","status":true,"message":"OK","id":7}`))
	require.NoError(t, err)
	assert.Equal(t, EditResponse{Operation: OperationEdit, Status: true, Message: "OK", ID: "7"}, resp)

	resp, err = ParseEditResponse([]byte(`{"operation":"del","status":"false","message":"Unknown folder"}`))
	require.NoError(t, err)
	assert.Equal(t, EditResponse{Operation: OperationDelete, Status: false, Message: "Unknown folder"}, resp)

	bad := []string{
		``,
		`null`,
		`[]`,
		`<html>`,
		`{"operation":"rename","status":true}`,
		`{"status":true,"message":"OK"}`,
		`{"operation":"add","message":"OK"}`,
		`{"operation":"add","status":"yes"}`,
		`{"operation":7,"status":true}`,
	}
	for _, body := range bad {
		_, err := ParseEditResponse([]byte(body))
		require.Error(t, err, body)
		assert.True(t, apperrors.IsParse(err), body)
	}
}

func TestParseFolderEntriesRejectsMissingID(t *testing.T) {
	_, err := ParseFolderEntries([]byte(`[{"label":"x","path":"/x"}]`))
	require.Error(t, err)
	assert.True(t, apperrors.IsParse(err))

	_, err = ParseFolderEntries([]byte(`[null]`))
	assert.True(t, apperrors.IsParse(err))

	entries, err := ParseFolderEntries([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseConfiguration(t *testing.T) {
	cfg, err := ParseConfiguration([]byte(`{"serverName":"Holmes","httpServerPort":8085,"logLevel":"DEBUG"}`))
	require.NoError(t, err)
	assert.Equal(t, Configuration{ServerName: "Holmes", HTTPServerPort: 8085, LogLevel: "DEBUG"}, cfg)

	_, err = ParseConfiguration([]byte(`{"serverName":"Holmes","httpServerPort":"eighty"}`))
	assert.True(t, apperrors.IsParse(err))

	_, err = ParseConfiguration([]byte(`{"httpServerPort":8085}`))
	assert.True(t, apperrors.IsParse(err))
}

func TestParseServerSettingsRequiresFlags(t *testing.T) {
	_, err := ParseServerSettings([]byte(`{"serverName":"Holmes","prependPodcastItem":true}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsParse(err))
	assert.Contains(t, err.Error(), "enableIcecastDirectory")
}

func TestParseStatusResponse(t *testing.T) {
	resp, err := ParseStatusResponse([]byte(`{"status":true}`))
	require.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Empty(t, resp.Message)

	_, err = ParseStatusResponse([]byte(`ok`))
	assert.True(t, apperrors.IsParse(err))
}

func TestNewSettingsUpdate(t *testing.T) {
	assert.Equal(t, SettingsUpdate{ServerName: "Holmes", PrependPodcastItem: "true", EnableIcecastDirectory: "false"},
		NewSettingsUpdate(" Holmes\n", true, false))
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("del")
	require.NoError(t, err)
	assert.Equal(t, OperationDelete, op)
	_, err = ParseOperation("remove")
	assert.Error(t, err)
}
