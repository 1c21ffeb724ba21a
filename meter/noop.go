package meter

import "github.com/epoxyteam/sapo-client-sdk"

// NoopMeter is a meter that does nothing.
type NoopMeter struct{}

var _ sapo.Meter = (*NoopMeter)(nil)

func (m *NoopMeter) OnRequest(sapo.RequestEvent) {}
func (m *NoopMeter) OnResult(sapo.ResultEvent)   {}
