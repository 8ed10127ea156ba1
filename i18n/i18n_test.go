package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultBundle(t *testing.T) {
	b, err := Load("en", "")
	require.NoError(t, err)
	assert.Equal(t, "en", b.Locale())

	v, err := b.Lookup("msg.video.edit.caption")
	require.NoError(t, err)
	assert.Equal(t, "Edit video folder", v)

	v, err = b.Lookup("msg.settings.saved")
	require.NoError(t, err)
	assert.Equal(t, "Settings saved", v)
}

func TestLoadMatchesRegionalLocale(t *testing.T) {
	b, err := Load("fr_CA", "")
	require.NoError(t, err)
	assert.Equal(t, "fr", b.Locale())

	v, err := b.Lookup("msg.podcast.url")
	require.NoError(t, err)
	assert.Equal(t, "URL", v)
	v, err = b.Lookup("msg.cancel")
	require.NoError(t, err)
	assert.Equal(t, "Annuler", v)
}

func TestLoadUnknownLocaleFallsBack(t *testing.T) {
	for _, locale := range []string{"ja", "", "not a locale"} {
		b, err := Load(locale, "")
		require.NoError(t, err, locale)
		assert.Equal(t, "en", b.Locale(), locale)
	}
}

func TestLookupMissingKey(t *testing.T) {
	b, err := Load("en", "")
	require.NoError(t, err)

	_, err = b.Lookup("msg.settings.unknown")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrClassI18n, apperrors.GetClass(err))

	// a table is not a message
	_, err = b.Lookup("msg.video")
	assert.Error(t, err)
}

func TestBundleDirOverridesAndAddsLocales(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages.toml"), []byte("[msg.settings]\ntitle = \"Server settings\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages_de.toml"), []byte("[msg]\ncancel = \"Abbrechen\"\n"), 0o644))

	b, err := Load("en", dir)
	require.NoError(t, err)
	v, err := b.Lookup("msg.settings.title")
	require.NoError(t, err)
	assert.Equal(t, "Server settings", v)
	v, err = b.Lookup("msg.save")
	require.NoError(t, err)
	assert.Equal(t, "Save", v)

	de, err := Load("de-AT", dir)
	require.NoError(t, err)
	assert.Equal(t, "de", de.Locale())
	v, err = de.Lookup("msg.cancel")
	require.NoError(t, err)
	assert.Equal(t, "Abbrechen", v)
	v, err = de.Lookup("msg.save")
	require.NoError(t, err)
	assert.Equal(t, "Save", v)
}

func TestBundleDirInvalidToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages.toml"), []byte("[msg\n"), 0o644))
	_, err := Load("en", dir)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrClassI18n, apperrors.GetClass(err))
}

func TestLabels(t *testing.T) {
	m := Map{"a": "A", "b": "B"}
	got, err := Labels(m, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "A", "b": "B"}, got)

	_, err = Labels(m, "a", "c")
	assert.Error(t, err)
}

func TestEveryKindHasItsKeys(t *testing.T) {
	for _, locale := range []string{"en", "fr"} {
		b, err := Load(locale, "")
		require.NoError(t, err)
		for _, kind := range []string{"video", "audio", "picture"} {
			_, err := Labels(b, "msg."+kind+".folders", "msg."+kind+".id", "msg."+kind+".label", "msg."+kind+".path",
				"msg."+kind+".edit.caption", "msg."+kind+".add.caption", "msg."+kind+".remove.caption", "msg."+kind+".remove.msg")
			assert.NoError(t, err, locale+" "+kind)
		}
		_, err = Labels(b, "msg.podcast.folders", "msg.podcast.url", "msg.podcast.remove.msg")
		assert.NoError(t, err, locale)
	}
}
