package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/repository"
	"github.com/emrgen/programtree/internal/service"
	"github.com/emrgen/programtree/internal/store"
	"github.com/sirupsen/logrus"
)

const postponeTimeout = 10 * time.Minute

var _ CronJob = (*PostponeTreesTask)(nil)

// PostponeTreesTask fills the trees of year+1 from the trees of year. Only the
// roots already created in year+1 and still empty are filled.
type PostponeTreesTask struct {
	cron  string
	year  int
	store store.Store
	bus   *bus.MessageBus
}

func NewPostponeTreesTask(schedule string, year int, store store.Store, bus *bus.MessageBus) *PostponeTreesTask {
	return &PostponeTreesTask{
		cron:  schedule,
		year:  year,
		store: store,
		bus:   bus,
	}
}

func (p *PostponeTreesTask) Schedule() string {
	return p.cron
}

func (p *PostponeTreesTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), postponeTimeout)
	defer cancel()

	filled, err := p.Postpone(ctx)
	if err != nil {
		logrus.Errorf("postpone of %d failed: %v", p.year, err)
		return
	}
	logrus.Infof("postponed %d trees from %d to %d", len(filled), p.year, p.year+1)
}

// Postpone fills every eligible tree and returns the fill results. A tree that
// cannot be filled is logged and skipped.
func (p *PostponeTreesTask) Postpone(ctx context.Context) ([]*service.FillResult, error) {
	roots, err := repository.NewNodeRepository(p.store).SearchRoots(ctx, p.year)
	if err != nil {
		return nil, fmt.Errorf("search roots of %d: %w", p.year, err)
	}
	resolver := repository.NewNextYearResolver(p.store)

	var filled []*service.FillResult
	for _, root := range roots {
		next, err := resolver.NextYearNode(ctx, root)
		if err != nil {
			return filled, err
		}
		if next == nil {
			continue
		}
		hasContent, err := resolver.HasContent(ctx, next)
		if err != nil {
			return filled, err
		}
		if hasContent {
			continue
		}

		result, err := p.bus.Invoke(ctx, command.FillFromLastYear{Tree: command.Tree{Code: next.Code, Year: next.Year}})
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return filled, err
		}
		if err != nil {
			logrus.Warnf("cannot postpone %s to %d: %v", root.Code, next.Year, err)
			continue
		}

		fill := result.(*service.FillResult)
		for _, event := range fill.Events {
			logrus.Infof("postpone %s %d: %s", fill.Code, fill.Year, event.Message)
		}
		filled = append(filled, fill)
	}
	return filled, nil
}
