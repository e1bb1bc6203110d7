package usecase

import "context"

// MediaNormalizeReport summarises one pass over stored media references.
type MediaNormalizeReport struct {
	Scanned    int
	Normalized int // Rewritten to the bare blob name.
	Cleared    int // Pointed at a blob that no longer exists.
	Unchanged  int
}

// MediaMaintenanceUsecase repairs media references left by older deployments,
// which stored paths such as "uploads/x.png" or absolute URLs instead of blob names.
type MediaMaintenanceUsecase interface {
	// NormalizeReferences rewrites references in place unless dryRun is set.
	NormalizeReferences(ctx context.Context, dryRun bool) (*MediaNormalizeReport, error)
}
