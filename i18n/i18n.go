package i18n

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

//go:embed bundle/*.toml
var embedded embed.FS

const (
	bundleName = "messages"
	bundleExt  = ".toml"
)

// base is the locale of the bundle without suffix.
var base = language.English

// Lookup resolves a message key. Missing keys are errors, never blanks.
type Lookup interface {
	Lookup(key string) (string, error)
}

// Bundle is an immutable message table for one locale.
type Bundle struct {
	locale language.Tag
	k      *koanf.Koanf
}

// Load builds the bundle closest to locale. Files in dir, when set, are
// layered over the embedded ones so single keys can be overridden.
// The base bundle is always loaded first and the matched locale on top.
func Load(locale, dir string) (*Bundle, error) {
	available, err := locales(dir)
	if err != nil {
		return nil, err
	}
	tag := match(locale, available)

	k := koanf.New(".")
	names := []string{bundleName + bundleExt}
	if tag != base {
		names = append(names, bundleName+"_"+fileSuffix(tag)+bundleExt)
	}
	for _, name := range names {
		if err := loadFile(k, name, dir); err != nil {
			return nil, err
		}
	}
	logger.Log.WithFields(logrus.Fields{"requested": locale, "locale": tag.String(), "keys": len(k.Keys())}).Debugln("message bundle loaded")
	return &Bundle{locale: tag, k: k}, nil
}

func loadFile(k *koanf.Koanf, name, dir string) error {
	found := false
	if data, err := embedded.ReadFile("bundle/" + name); err == nil {
		if err := k.Load(rawbytes.Provider(data), toml.Parser()); err != nil {
			return apperrors.Wrap(apperrors.ErrClassI18n, "load bundle", errors.Wrap(err, name))
		}
		found = true
	}
	if dir != "" {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return apperrors.Wrap(apperrors.ErrClassI18n, "load bundle", errors.Wrap(err, path))
			}
			found = true
		}
	}
	if !found {
		return apperrors.New(apperrors.ErrClassI18n, "load bundle", "bundle not found: "+name)
	}
	return nil
}

// locales lists the tags that have a bundle, embedded or in dir.
func locales(dir string) ([]language.Tag, error) {
	seen := map[string]bool{}
	entries, err := fs.ReadDir(embedded, "bundle")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrClassI18n, "list bundles", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, bundleName+"*"+bundleExt))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrClassI18n, "list bundles", err)
		}
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
	}
	sort.Strings(names)

	tags := []language.Tag{base}
	seen[base.String()] = true
	for _, name := range names {
		suffix, ok := strings.CutPrefix(strings.TrimSuffix(name, bundleExt), bundleName+"_")
		if !ok {
			continue
		}
		tag, err := language.Parse(strings.ReplaceAll(suffix, "_", "-"))
		if err != nil {
			logger.Log.WithField("file", name).Warnln("skipping bundle with invalid locale")
			continue
		}
		if !seen[tag.String()] {
			seen[tag.String()] = true
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func match(locale string, available []language.Tag) language.Tag {
	requested, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil {
		return base
	}
	_, idx, conf := language.NewMatcher(available).Match(requested)
	if conf == language.No {
		return base
	}
	return available[idx]
}

func fileSuffix(tag language.Tag) string {
	return strings.ReplaceAll(tag.String(), "-", "_")
}

// Locale returns the tag the bundle was resolved to.
func (b *Bundle) Locale() string {
	return b.locale.String()
}

func (b *Bundle) Lookup(key string) (string, error) {
	if s, ok := b.k.Get(key).(string); ok {
		return s, nil
	}
	return "", apperrors.New(apperrors.ErrClassI18n, "lookup", "missing message key "+key).WithContext("locale", b.locale.String())
}

// Labels resolves a set of keys at once and stops at the first missing one.
func Labels(l Lookup, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := l.Lookup(key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Map is a Lookup over a fixed table, handy for tests and fallbacks.
type Map map[string]string

func (m Map) Lookup(key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", apperrors.New(apperrors.ErrClassI18n, "lookup", "missing message key "+key)
}
