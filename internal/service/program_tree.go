package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/cache"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/queue"
	"github.com/emrgen/programtree/internal/repository"
	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/sirupsen/logrus"
)

// NewProgramTreeService creates a new ProgramTreeService.
func NewProgramTreeService(store store.Store, cache cache.ContentCache, queue queue.TreeQueue) *ProgramTreeService {
	return &ProgramTreeService{
		store: store,
		cache: cache,
		queue: queue,
	}
}

// ProgramTreeService handles the program tree commands. Every write loads the
// tree, applies the domain operation and persists the changes in one transaction.
type ProgramTreeService struct {
	store store.Store
	cache cache.ContentCache
	queue queue.TreeQueue
}

// Register binds every command handler of the service to the bus.
func (s *ProgramTreeService) Register(b *bus.MessageBus) error {
	return errors.Join(
		bus.Handle(b, s.GetProgramTree),
		bus.Handle(b, s.GetContent),
		bus.Handle(b, s.PasteElement),
		bus.Handle(b, s.DetachElement),
		bus.Handle(b, s.UpdateLink),
		bus.Handle(b, s.BulkUpdateLinks),
		bus.Handle(b, s.OrderUpLink),
		bus.Handle(b, s.OrderDownLink),
		bus.Handle(b, s.SetPrerequisite),
		bus.Handle(b, s.GetLinksUsingNode),
		bus.Handle(b, s.FillFromLastYear),
		bus.Handle(b, s.DeleteProgramTree),
	)
}

// GetProgramTree returns the whole tree.
func (s *ProgramTreeService) GetProgramTree(ctx context.Context, cmd command.GetProgramTree) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	t, err := repository.NewProgramTreeRepository(s.store).Get(ctx, cmd.Identity())
	if err != nil {
		return nil, err
	}
	return newProgramTreeView(t), nil
}

// GetContent returns the rendered tree, from the content cache when present.
func (s *ProgramTreeService) GetContent(ctx context.Context, cmd command.GetContent) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	identity := cmd.Identity()

	content, err := s.cache.GetContent(ctx, identity)
	if err == nil {
		return &ContentResult{Content: content, Cached: true}, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logrus.Warnf("content cache unavailable for %s: %v", identity, err)
	}

	t, err := repository.NewProgramTreeRepository(s.store).Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	content, err = json.Marshal(newProgramTreeView(t))
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetContent(ctx, identity, content); err != nil {
		logrus.Warnf("failed to cache content of %s: %v", identity, err)
	}
	return &ContentResult{Content: content}, nil
}

// PasteElement attaches an existing node in the tree.
func (s *ProgramTreeService) PasteElement(ctx context.Context, cmd command.PasteElement) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	// the primary key of the new link is known once the tree is written
	var link *tree.Link
	err := s.write(ctx, cmd, queue.ChangeContent, func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error {
		child, err := pastedNode(ctx, tx, t, tree.NodeIdentity{Code: cmd.ChildCode, Year: cmd.ChildYear})
		if err != nil {
			return err
		}
		link, err = t.PasteNode(child, tree.PasteOptions{
			Path:           pathOrRoot(t, cmd.Path),
			LinkAttributes: cmd.Attributes(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return newLinkView(link), nil
}

// pastedNode returns the node to paste with its subtree, taken from the tree
// when it is already used there. The subtree is needed by the cycle and
// reference checks.
func pastedNode(ctx context.Context, tx store.Store, t *tree.ProgramTree, identity tree.NodeIdentity) (*tree.Node, error) {
	node, err := t.GetNodeByCodeAndYear(identity.Code, identity.Year)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, tree.ErrNodeNotFound) {
		return nil, err
	}
	return repository.NewProgramTreeRepository(tx).GetNode(ctx, identity)
}

// DetachElement removes a link from the tree.
func (s *ProgramTreeService) DetachElement(ctx context.Context, cmd command.DetachElement) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	result := &DetachResult{}
	err := s.write(ctx, cmd, queue.ChangeContent, func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error {
		link, warnings, err := t.DetachNode(tree.Path(cmd.Path))
		if err != nil {
			return err
		}
		result.Link = newLinkView(link)
		if !warnings.Empty() {
			result.Warnings = warnings.Messages
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLink replaces the attributes of one link.
func (s *ProgramTreeService) UpdateLink(ctx context.Context, cmd command.UpdateLink) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	var result *LinkView
	err := s.write(ctx, cmd, queue.ChangeLink, func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error {
		link, err := t.UpdateLink(cmd.LinkIdentity(), cmd.Attributes())
		if err != nil {
			return err
		}
		result = newLinkView(link)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkUpdateLinks applies every link update or none. The failures of all the
// updates are reported together in a BulkUpdateLinkError.
func (s *ProgramTreeService) BulkUpdateLinks(ctx context.Context, cmd command.BulkUpdateLinks) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	result := &LinksResult{}
	err := s.write(ctx, cmd, queue.ChangeLink, func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error {
		failures := make(map[string]error)
		for _, update := range cmd.Links {
			link, err := t.UpdateLink(update.LinkIdentity(), update.Attributes())
			if err != nil {
				failures[update.LinkIdentity().String()] = err
				continue
			}
			result.Links = append(result.Links, newLinkView(link))
		}
		if len(failures) > 0 {
			return &BulkUpdateLinkError{Errors: failures}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OrderUpLink moves a link before its previous sibling.
func (s *ProgramTreeService) OrderUpLink(ctx context.Context, cmd command.OrderUpLink) (any, error) {
	return s.order(ctx, cmd, cmd.Tree, cmd.Path, (*tree.ProgramTree).OrderUp)
}

// OrderDownLink moves a link after its next sibling.
func (s *ProgramTreeService) OrderDownLink(ctx context.Context, cmd command.OrderDownLink) (any, error) {
	return s.order(ctx, cmd, cmd.Tree, cmd.Path, (*tree.ProgramTree).OrderDown)
}

func (s *ProgramTreeService) order(ctx context.Context, cmd command.Command, target command.Tree, path string,
	move func(*tree.ProgramTree, tree.Path) (*tree.Link, error)) (any, error) {
	if err := validate(target); err != nil {
		return nil, err
	}

	var result *LinkView
	err := s.writeTree(ctx, target.Identity(), cmd, queue.ChangeContent, func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error {
		link, err := move(t, tree.Path(path))
		if err != nil {
			return err
		}
		result = newLinkView(link)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetPrerequisite sets or removes the prerequisite of a learning unit in the tree.
func (s *ProgramTreeService) SetPrerequisite(ctx context.Context, cmd command.SetPrerequisite) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	result := &PrerequisiteResult{}
	err := s.write(ctx, cmd, queue.ChangePrerequisite, func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error {
		p, err := t.SetPrerequisite(tree.Path(cmd.Path), cmd.Expression)
		if err != nil {
			return err
		}
		node, err := t.GetNode(tree.Path(cmd.Path))
		if err != nil {
			return err
		}
		result.Code = node.Code
		result.Year = node.Year
		result.Expression = p.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetLinksUsingNode lists the links to the node in every training or mini training using it.
func (s *ProgramTreeService) GetLinksUsingNode(ctx context.Context, cmd command.GetLinksUsingNode) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	identity := tree.NodeIdentity{Code: cmd.Code, Year: cmd.Year}

	node, err := repository.NewNodeRepository(s.store).Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	trees, err := repository.NewProgramTreeRepository(s.store).SearchFromChildren(ctx, []tree.NodeIdentity{identity})
	if err != nil {
		return nil, err
	}

	result := &LinksResult{Links: make([]*LinkView, 0)}
	seen := make(map[int]struct{})
	for _, t := range trees {
		for _, link := range t.GetLinksUsingNode(node) {
			if _, ok := seen[link.PK]; ok {
				continue
			}
			seen[link.PK] = struct{}{}
			result.Links = append(result.Links, newLinkView(link))
		}
	}
	return result, nil
}

// FillFromLastYear copies the tree of the previous year into the tree of cmd.Year.
// The target root is created when it does not exist yet.
func (s *ProgramTreeService) FillFromLastYear(ctx context.Context, cmd command.FillFromLastYear) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	from := tree.ProgramTreeIdentity{Code: cmd.Code, Year: cmd.Year - 1}

	result := &FillResult{Code: cmd.Code, Year: cmd.Year}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		trees := repository.NewProgramTreeRepository(tx)
		resolver := repository.NewNextYearResolver(tx)

		source, err := trees.Get(ctx, from)
		if err != nil {
			return err
		}

		target, err := trees.Get(ctx, cmd.Identity())
		if errors.Is(err, tree.ErrProgramTreeNotFound) {
			root, err := resolver.CreateNextYearNode(ctx, source.Root)
			if err != nil {
				return err
			}
			target = tree.New(root, source.AuthorizedRelationships, nil)
		} else if err != nil {
			return err
		}

		report, err := tree.FillFromLastYear(ctx, source, target, resolver)
		if err != nil {
			return err
		}
		result.Links = len(target.CreatedLinks())
		result.Events = newEventViews(report)
		return trees.Update(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, cmd.Identity(), cmd, queue.ChangeContent)
	return result, nil
}

// DeleteProgramTree removes the tree and the groups it owns.
func (s *ProgramTreeService) DeleteProgramTree(ctx context.Context, cmd command.DeleteProgramTree) (any, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	if err := repository.NewProgramTreeRepository(s.store).Delete(ctx, cmd.Identity()); err != nil {
		return nil, err
	}

	s.changed(ctx, cmd.Identity(), cmd, queue.ChangeDeleted)
	return &DeleteResult{Code: cmd.Code, Year: cmd.Year}, nil
}

type treeCommand interface {
	command.Command
	Identity() tree.ProgramTreeIdentity
}

type mutation func(ctx context.Context, tx store.Store, t *tree.ProgramTree) error

func (s *ProgramTreeService) write(ctx context.Context, cmd treeCommand, changeType queue.ChangeType, mutate mutation) error {
	return s.writeTree(ctx, cmd.Identity(), cmd, changeType, mutate)
}

// writeTree loads the tree, mutates it and persists the changes in one
// transaction, then invalidates the content cache and publishes the change.
func (s *ProgramTreeService) writeTree(ctx context.Context, identity tree.ProgramTreeIdentity, cmd command.Command,
	changeType queue.ChangeType, mutate mutation) error {
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		trees := repository.NewProgramTreeRepository(tx)
		t, err := trees.Get(ctx, identity)
		if err != nil {
			return err
		}
		if err := mutate(ctx, tx, t); err != nil {
			return err
		}
		return trees.Update(ctx, t)
	})
	if err != nil {
		return err
	}

	s.changed(ctx, identity, cmd, changeType)
	return nil
}

// changed runs after a committed write. Failures are logged only: the write itself succeeded.
func (s *ProgramTreeService) changed(ctx context.Context, identity tree.ProgramTreeIdentity, cmd command.Command, changeType queue.ChangeType) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logrus.Errorf("failed to invalidate content cache after %s: %v", cmd.CommandName(), err)
	}
	event := queue.NewTreeChanged(identity, changeType, cmd.CommandName())
	if err := s.queue.PublishChange(ctx, event); err != nil {
		logrus.Errorf("failed to publish change %s of %s: %v", event.ID, identity, err)
	}
}

func validate(cmd interface{ Validate() error }) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func pathOrRoot(t *tree.ProgramTree, path string) tree.Path {
	if path == "" {
		return t.RootPath()
	}
	return tree.Path(path)
}
