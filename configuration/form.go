package configuration

import (
	"context"

	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/Kellerman81/holmes_admin/i18n"
	"github.com/spf13/cast"
)

// LegacyErrorMessage is what the old admin page displayed when a save was refused.
const LegacyErrorMessage = "ReferenceError: serverResponse is not defined"

// ConfigBackend is the part of the holmes client the mini form needs.
type ConfigBackend interface {
	GetConfiguration(ctx context.Context) (apiexternal.Configuration, error)
	EditConfiguration(ctx context.Context, values apiexternal.ConfigurationForm) (apiexternal.StatusResponse, error)
}

// BannerKind is the alert style of a Banner; BannerNone hides it.
type BannerKind string

const (
	BannerNone    BannerKind = ""
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "danger"
)

// Banner is the dismissible message below the mini form.
type Banner struct {
	Kind BannerKind
	Text string
}

func errorBanner(err error) Banner {
	return Banner{Kind: BannerError, Text: apperrors.UserMessage(err)}
}

// ConfigForm drives the server name, port and log level form.
type ConfigForm struct {
	client ConfigBackend
	lookup i18n.Lookup
	legacy bool
}

// NewConfigForm creates the form controller. With legacyErrorMessage set a
// refused save shows LegacyErrorMessage instead of the backend message.
func NewConfigForm(client ConfigBackend, lookup i18n.Lookup, legacyErrorMessage bool) *ConfigForm {
	return &ConfigForm{client: client, lookup: lookup, legacy: legacyErrorMessage}
}

// Load fetches the current values as the form shows them.
func (f *ConfigForm) Load(ctx context.Context) (apiexternal.ConfigurationForm, error) {
	cfg, err := f.client.GetConfiguration(ctx)
	if err != nil {
		return apiexternal.ConfigurationForm{}, err
	}
	return apiexternal.ConfigurationForm{
		ServerName:     cfg.ServerName,
		HTTPServerPort: cast.ToString(cfg.HTTPServerPort),
		LogLevel:       cfg.LogLevel,
	}, nil
}

// Submit posts the three fields as typed. The returned banner is always set;
// the error is only there for logging.
func (f *ConfigForm) Submit(ctx context.Context, values apiexternal.ConfigurationForm) (Banner, error) {
	resp, err := f.client.EditConfiguration(ctx, values)
	if err != nil {
		return errorBanner(err), err
	}
	if !resp.Status {
		if f.legacy {
			return Banner{Kind: BannerError, Text: LegacyErrorMessage}, nil
		}
		return Banner{Kind: BannerError, Text: resp.Message}, nil
	}
	saved, err := f.lookup.Lookup("msg.configuration.saved")
	if err != nil {
		return errorBanner(err), err
	}
	return Banner{Kind: BannerSuccess, Text: saved}, nil
}

// Reset drops the banner and reloads the values from the server.
func (f *ConfigForm) Reset(ctx context.Context) (apiexternal.ConfigurationForm, Banner, error) {
	values, err := f.Load(ctx)
	if err != nil {
		return values, errorBanner(err), err
	}
	return values, Banner{}, nil
}
