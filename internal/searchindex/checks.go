package searchindex

import (
	"context"
	"log/slog"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
	"github.com/Aman-CERP/serverpreflight/internal/preflight"
	"github.com/Aman-CERP/serverpreflight/internal/probe"
)

// verifySystemMemory requires RequiredMemoryMB of total memory. The bar sits
// below 4GB because virtualized hosts often report less than they were given.
func (v *Validator) verifySystemMemory(_ context.Context) preflight.Outcome {
	total, err := v.memory.TotalMemory(probe.MB)
	if err != nil {
		return preflight.Fail(perrors.CodeSystemMemory, errSystemMemoryUnknown(err))
	}
	if total < RequiredMemoryMB {
		return preflight.Fail(perrors.CodeSystemMemory, errSystemMemory(total, RequiredMemoryMB))
	}
	return preflight.Passf("%d MB of memory (minimum: %d MB)", total, RequiredMemoryMB)
}

func (v *Validator) verifyHeapSize(_ context.Context) preflight.Outcome {
	heap := v.snap.Search.HeapSizeMB
	if heap == nil {
		return preflight.Pass()
	}
	if *heap < MinHeapSizeMB || *heap > MaxHeapSizeMB {
		return preflight.Fail(perrors.CodeHeapSize, errHeapSize(*heap))
	}
	return preflight.Passf("heap size %d MB", *heap)
}

func (v *Validator) verifyReindexSleepTimes(_ context.Context) preflight.Outcome {
	minMS, maxMS := v.snap.Erchef.ReindexSleepMinMS, v.snap.Erchef.ReindexSleepMaxMS
	if minMS == nil || maxMS == nil {
		return preflight.Pass()
	}
	if *minMS > *maxMS {
		return preflight.Fail(perrors.CodeReindexSleep, errReindexSleep(*minMS, *maxMS))
	}
	return preflight.Pass()
}

// verifyInternalDisabledIfExternal rejects running the internal index next to
// an external one, then requires a usable credential pair.
func (v *Validator) verifyInternalDisabledIfExternal(_ context.Context) preflight.Outcome {
	if v.External() && v.snap.InternalSearchEnabled() {
		return preflight.Fail(perrors.CodeInternalIndex, errShouldDisableInternal(v.snap.UserConfigPath))
	}
	if !v.snap.Erchef.Credentials.Complete() {
		return preflight.Fail(perrors.CodeInternalIndex, errShouldAuth(v.snap.UserConfigPath))
	}
	return preflight.Pass()
}

func (v *Validator) verifyExternalURL(_ context.Context) preflight.Outcome {
	if v.External() && v.snap.Search.ExternalURL == "" {
		return preflight.Fail(perrors.CodeExternalURL, errExternalURL(v.snap.UserConfigPath))
	}
	return preflight.Pass()
}

func (v *Validator) verifyErchefConfig(_ context.Context) preflight.Outcome {
	if v.snap.Erchef.SearchProvider == nil {
		return preflight.Pass()
	}
	switch v.snap.Erchef.SearchQueueMode {
	case "batch", "inline":
		return preflight.Pass()
	default:
		return preflight.Fail(perrors.CodeQueueMode, errQueueMode(v.snap.UserConfigPath))
	}
}

// verifyVersion never fails: an unreachable or old index only warns.
func (v *Validator) verifyVersion(ctx context.Context) preflight.Outcome {
	major := v.version.MajorVersion(ctx)
	if v.onVersion != nil {
		v.onVersion(major)
	}
	switch {
	case major == RequiredVersion || major == SupportedVersion:
		return preflight.Passf("search index major version %d", major)
	case major < SupportedVersion:
		return preflight.Warn("", warnUnsupportedVersion(major))
	default:
		v.logger.Debug("search index is newer than the supported version",
			slog.Int("version", major),
			slog.Int("supported", SupportedVersion))
		return preflight.Passf("search index major version %d", major)
	}
}
