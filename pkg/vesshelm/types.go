package vesshelm

import (
	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/configedit"
	"github.com/vesshelm/vesshelm/internal/dag"
	"github.com/vesshelm/vesshelm/internal/deploy"
	"github.com/vesshelm/vesshelm/internal/engine"
)

// Type aliases re-export internal types as the public API.

type Config = config.Config
type Chart = config.Chart
type Repository = config.Repository
type Event = engine.Event
type SyncResult = engine.SyncResult
type ChartStatus = engine.ChartStatus
type UpdateReport = engine.UpdateReport
type VersionUpdate = configedit.VersionUpdate
type DeployResult = deploy.Result
type TreeNode = dag.TreeNode
