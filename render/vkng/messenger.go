package vkng

import (
	"github.com/vkngwrapper/extensions/ext_debug_utils"

	"github.com/alovak/alovak/render"
)

type Messenger struct {
	messenger ext_debug_utils.DebugUtilsMessenger
}

func (m *Messenger) Destroy() {
	m.messenger.Destroy(nil)
}

func messengerOptions(reporter render.Reporter) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning |
			ext_debug_utils.SeverityInfo | ext_debug_utils.SeverityVerbose,
		MessageType: ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			reporter.Report(diagnostic(msgType, severity, data))
			return false
		},
	}
}

func diagnostic(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) render.Diagnostic {
	d := render.Diagnostic{Severity: render.SeverityVerbose}

	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		d.Severity = render.SeverityError
	case severity&ext_debug_utils.SeverityWarning != 0:
		d.Severity = render.SeverityWarning
	case severity&ext_debug_utils.SeverityInfo != 0:
		d.Severity = render.SeverityInfo
	}

	if msgType&ext_debug_utils.TypeGeneral != 0 {
		d.Type |= render.MessageGeneral
	}
	if msgType&ext_debug_utils.TypeValidation != 0 {
		d.Type |= render.MessageValidation
	}
	if msgType&ext_debug_utils.TypePerformance != 0 {
		d.Type |= render.MessagePerformance
	}

	if data != nil {
		d.MessageID = data.MessageIDName
		d.MessageIDNumber = data.MessageIDNumber
		d.Message = data.Message
	}
	return d
}
