package configuration

import (
	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/logger"
)

// UnparsableResponse is the message shown when an edit answer cannot be read.
const UnparsableResponse = "Unable to parse response"

// EditResponseData is the normalised outcome of a grid submit.
// HasID is false for deletes, which carry no id.
type EditResponseData struct {
	Status  bool
	Message string
	ID      string
	HasID   bool
}

// GetEditResponseData normalises the raw answer of an edit endpoint.
// Anything that is not a well formed edit, add or del answer becomes a failure
// with UnparsableResponse.
func GetEditResponseData(body []byte) EditResponseData {
	resp, err := apiexternal.ParseEditResponse(body)
	if err != nil {
		logger.Log.WithError(err).Warnln("edit response rejected")
		return EditResponseData{Status: false, Message: UnparsableResponse, ID: "", HasID: true}
	}
	switch resp.Operation {
	case apiexternal.OperationEdit, apiexternal.OperationAdd:
		return EditResponseData{Status: resp.Status, Message: resp.Message, ID: resp.ID, HasID: true}
	case apiexternal.OperationDelete:
		return EditResponseData{Status: resp.Status, Message: resp.Message}
	}
	return EditResponseData{Status: false, Message: UnparsableResponse, ID: "", HasID: true}
}
