package pipeline

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/docextract/internal/entity"
)

// SourceRouter dispatches fetches by source scheme: s3:// sources go to the
// remote analysis client, everything else is treated as a local block dump.
type SourceRouter struct {
	Remote BlockSource
	Local  BlockSource
}

func (r SourceRouter) Fetch(ctx context.Context, source string) ([]entity.Block, error) {
	if strings.HasPrefix(source, "s3://") && r.Remote != nil {
		return r.Remote.Fetch(ctx, source)
	}
	return r.Local.Fetch(ctx, source)
}
