package render

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// nopHandler discards everything. It is the handler behind a Renderer built
// without a logger.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

const debugReportFlags = vulkan.DebugReportFlags(vulkan.DebugReportErrorBit |
	vulkan.DebugReportWarningBit |
	vulkan.DebugReportPerformanceWarningBit |
	vulkan.DebugReportInformationBit |
	vulkan.DebugReportDebugBit)

// debugReportLevel maps report flags to a log level, most severe bit first.
func debugReportLevel(flags vulkan.DebugReportFlags) slog.Level {
	switch {
	case flags&vulkan.DebugReportFlags(vulkan.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vulkan.DebugReportFlags(vulkan.DebugReportWarningBit|vulkan.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	case flags&vulkan.DebugReportFlags(vulkan.DebugReportInformationBit) != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// forwardDebugReport logs one validation message verbatim. The category is
// the reporting layer and the object type it concerns. The call that caused
// the report is never aborted.
func forwardDebugReport(log *slog.Logger, flags vulkan.DebugReportFlags, objectType vulkan.DebugReportObjectType,
	messageCode int32, layerPrefix, message string) vulkan.Bool32 {
	log.Log(context.Background(), debugReportLevel(flags), message,
		"category", fmt.Sprintf("%s/%d", layerPrefix, objectType),
		"code", messageCode)
	return vulkan.False
}

// installDebugReport registers a debug report callback that feeds the
// renderer's logger. Without the extension it only warns.
func (r *Renderer) installDebugReport() error {
	if r.inst.CreateDebugReportCallback == nil || r.inst.DestroyDebugReportCallback == nil {
		r.log.Warn("debug report extension not available, validation messages will not be logged")
		return nil
	}
	log := r.log
	info := vulkan.DebugReportCallbackCreateInfo{
		SType: vulkan.StructureTypeDebugReportCallbackCreateInfo,
		Flags: debugReportFlags,
		PfnCallback: func(flags vulkan.DebugReportFlags, objectType vulkan.DebugReportObjectType,
			object uint64, location uint, messageCode int32, layerPrefix string,
			message string, userData unsafe.Pointer) vulkan.Bool32 {
			return forwardDebugReport(log, flags, objectType, messageCode, layerPrefix, message)
		},
	}
	if err := NewError(r.inst.CreateDebugReportCallback(r.instance, &info, nil, &r.debugReport)); err != nil {
		return errors.Wrap(err, "create debug report callback")
	}
	return nil
}
