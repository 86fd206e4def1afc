package store

import (
	"context"

	"github.com/emrgen/programtree/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// adjacencyQuery walks group_element_years from the starting elements. The path
// column joins the element ids with "|", the same way tree paths do.
const adjacencyQuery = `
WITH RECURSIVE adjacency AS (
	SELECT gey.id, gey.parent_element_id, gey.child_element_id, gey.order_num,
		CAST(gey.parent_element_id AS TEXT) || '|' || CAST(gey.child_element_id AS TEXT) AS path,
		0 AS level,
		gey.parent_element_id AS starting_node_id
	FROM group_element_years gey
	WHERE gey.parent_element_id IN ?
	UNION ALL
	SELECT child.id, child.parent_element_id, child.child_element_id, child.order_num,
		parent.path || '|' || CAST(child.child_element_id AS TEXT),
		parent.level + 1,
		parent.starting_node_id
	FROM group_element_years child
	INNER JOIN adjacency parent ON parent.child_element_id = child.parent_element_id
	WHERE parent.level < ?
)
SELECT id, parent_element_id, child_element_id, order_num, path, level, starting_node_id
FROM adjacency
ORDER BY starting_node_id, level, order_num`

// reverseAdjacencyQuery walks group_element_years upwards from the starting elements.
// The path column lists the ancestors from the starting element.
const reverseAdjacencyQuery = `
WITH RECURSIVE ancestors AS (
	SELECT gey.id, gey.parent_element_id, gey.child_element_id, gey.order_num,
		CAST(gey.child_element_id AS TEXT) || '|' || CAST(gey.parent_element_id AS TEXT) AS path,
		0 AS level,
		gey.child_element_id AS starting_node_id
	FROM group_element_years gey
	WHERE gey.child_element_id IN ?
	UNION ALL
	SELECT parent.id, parent.parent_element_id, parent.child_element_id, parent.order_num,
		child.path || '|' || CAST(parent.parent_element_id AS TEXT),
		child.level + 1,
		child.starting_node_id
	FROM group_element_years parent
	INNER JOIN ancestors child ON child.parent_element_id = parent.child_element_id
	WHERE child.level < ?
)
SELECT id, parent_element_id, child_element_id, order_num, path, level, starting_node_id
FROM ancestors
ORDER BY starting_node_id, level, order_num`

// linkColumns are written on update, zero values included.
var linkColumns = []string{
	"order_num", "relative_credits", "min_credits", "max_credits", "is_mandatory", "block",
	"access_condition", "comment", "comment_english", "own_comment", "quadrimester_derogation", "link_type",
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) elements(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx).
		Model(&model.Element{}).
		Select("elements.*").
		Preload("GroupYear").
		Preload("LearningUnitYear").
		Preload("LearningClassYear")
}

func (g *GormStore) GetGroupElement(ctx context.Context, code string, year int) (*model.Element, error) {
	var element model.Element
	err := g.elements(ctx).
		Joins("JOIN group_years ON group_years.id = elements.group_year_id").
		Where("group_years.code = ? AND group_years.year = ?", code, year).
		First(&element).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &element, nil
}

func (g *GormStore) GetLearningUnitElement(ctx context.Context, code string, year int) (*model.Element, error) {
	var element model.Element
	err := g.elements(ctx).
		Joins("JOIN learning_unit_years ON learning_unit_years.id = elements.learning_unit_year_id").
		Where("learning_unit_years.code = ? AND learning_unit_years.year = ?", code, year).
		First(&element).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &element, nil
}

func (g *GormStore) GetNextLearningUnitElement(ctx context.Context, code string, year int) (*model.Element, error) {
	var element model.Element
	err := g.elements(ctx).
		Joins("JOIN learning_unit_years ON learning_unit_years.id = elements.learning_unit_year_id").
		Where("learning_unit_years.code = ? AND learning_unit_years.year > ?", code, year).
		Order("learning_unit_years.year").
		Take(&element).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &element, nil
}

func (g *GormStore) ListElements(ctx context.Context, ids []int) ([]*model.Element, error) {
	elements := make([]*model.Element, 0, len(ids))
	if len(ids) == 0 {
		return elements, nil
	}
	err := g.elements(ctx).Where("elements.id IN ?", ids).Find(&elements).Error
	return elements, err
}

func (g *GormStore) ListElementsByYear(ctx context.Context, year int) ([]*model.Element, error) {
	var elements []*model.Element
	err := g.elements(ctx).
		Joins("LEFT JOIN group_years ON group_years.id = elements.group_year_id").
		Joins("LEFT JOIN learning_unit_years ON learning_unit_years.id = elements.learning_unit_year_id").
		Where("group_years.year = ? OR learning_unit_years.year = ?", year, year).
		Order("elements.id").
		Find(&elements).Error
	return elements, err
}

func (g *GormStore) ListGroupElementsByCode(ctx context.Context, code string) ([]*model.Element, error) {
	var elements []*model.Element
	err := g.elements(ctx).
		Joins("JOIN group_years ON group_years.id = elements.group_year_id").
		Where("group_years.code = ?", code).
		Order("group_years.year").
		Find(&elements).Error
	return elements, err
}

func (g *GormStore) ListGroupElementsByType(ctx context.Context, year int, nodeTypes []string) ([]*model.Element, error) {
	var elements []*model.Element
	err := g.elements(ctx).
		Joins("JOIN group_years ON group_years.id = elements.group_year_id").
		Where("group_years.year = ? AND group_years.node_type IN ?", year, nodeTypes).
		Order("group_years.code").
		Find(&elements).Error
	return elements, err
}

func (g *GormStore) CreateGroupElement(ctx context.Context, group *model.GroupYear) (*model.Element, error) {
	db := g.db.WithContext(ctx)
	if err := db.Create(group).Error; err != nil {
		return nil, err
	}
	element := &model.Element{GroupYearID: &group.ID}
	if err := db.Omit(clause.Associations).Create(element).Error; err != nil {
		return nil, err
	}
	element.GroupYear = group
	return element, nil
}

func (g *GormStore) CreateLearningUnitElement(ctx context.Context, unit *model.LearningUnitYear) (*model.Element, error) {
	db := g.db.WithContext(ctx)
	if err := db.Create(unit).Error; err != nil {
		return nil, err
	}
	element := &model.Element{LearningUnitYearID: &unit.ID}
	if err := db.Omit(clause.Associations).Create(element).Error; err != nil {
		return nil, err
	}
	element.LearningUnitYear = unit
	return element, nil
}

func (g *GormStore) CreateLearningClassElement(ctx context.Context, class *model.LearningClassYear) (*model.Element, error) {
	db := g.db.WithContext(ctx)
	if err := db.Create(class).Error; err != nil {
		return nil, err
	}
	element := &model.Element{LearningClassYearID: &class.ID}
	if err := db.Omit(clause.Associations).Create(element).Error; err != nil {
		return nil, err
	}
	element.LearningClassYear = class
	return element, nil
}

func (g *GormStore) DeleteGroupElements(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	db := g.db.WithContext(ctx)

	var groupYearIDs []int
	err := db.Model(&model.Element{}).
		Where("id IN ? AND group_year_id IS NOT NULL", ids).
		Pluck("group_year_id", &groupYearIDs).Error
	if err != nil {
		return err
	}

	logrus.Infof("deleting %d group elements", len(groupYearIDs))
	if err := db.Where("id IN ? AND group_year_id IS NOT NULL", ids).Delete(&model.Element{}).Error; err != nil {
		return err
	}
	if len(groupYearIDs) == 0 {
		return nil
	}
	return db.Where("id IN ?", groupYearIDs).Delete(&model.GroupYear{}).Error
}

func (g *GormStore) GetAdjacencyList(ctx context.Context, rootIDs []int, maxDepth int) ([]*model.AdjacencyRow, error) {
	rows := make([]*model.AdjacencyRow, 0)
	if len(rootIDs) == 0 {
		return rows, nil
	}
	err := g.db.WithContext(ctx).Raw(adjacencyQuery, rootIDs, maxDepth).Scan(&rows).Error
	return rows, err
}

func (g *GormStore) GetReverseAdjacencyList(ctx context.Context, childIDs []int, maxDepth int) ([]*model.AdjacencyRow, error) {
	rows := make([]*model.AdjacencyRow, 0)
	if len(childIDs) == 0 {
		return rows, nil
	}
	err := g.db.WithContext(ctx).Raw(reverseAdjacencyQuery, childIDs, maxDepth).Scan(&rows).Error
	return rows, err
}

func (g *GormStore) ListLinks(ctx context.Context, ids []int) ([]*model.GroupElementYear, error) {
	links := make([]*model.GroupElementYear, 0, len(ids))
	if len(ids) == 0 {
		return links, nil
	}
	err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&links).Error
	return links, err
}

func (g *GormStore) ListParentLinks(ctx context.Context, childIDs []int) ([]*model.GroupElementYear, error) {
	links := make([]*model.GroupElementYear, 0)
	if len(childIDs) == 0 {
		return links, nil
	}
	err := g.db.WithContext(ctx).Where("child_element_id IN ?", childIDs).Find(&links).Error
	return links, err
}

func (g *GormStore) CountChildren(ctx context.Context, parentID int) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.GroupElementYear{}).
		Where("parent_element_id = ?", parentID).
		Count(&count).Error
	return count, err
}

func (g *GormStore) CreateLinks(ctx context.Context, links []*model.GroupElementYear) error {
	if len(links) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Create(&links).Error
}

func (g *GormStore) UpdateLinks(ctx context.Context, links []*model.GroupElementYear) error {
	db := g.db.WithContext(ctx)
	for _, link := range links {
		if err := db.Model(link).Select(linkColumns).Updates(link).Error; err != nil {
			return err
		}
	}
	return nil
}

func (g *GormStore) DeleteLinks(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.GroupElementYear{}).Error
}

func (g *GormStore) DeleteLinksOfParents(ctx context.Context, parentIDs []int) error {
	if len(parentIDs) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Where("parent_element_id IN ?", parentIDs).Delete(&model.GroupElementYear{}).Error
}

func (g *GormStore) ListPrerequisites(ctx context.Context, rootElementID int) ([]*model.Prerequisite, error) {
	var prerequisites []*model.Prerequisite
	err := g.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_number, position")
		}).
		Where("root_element_id = ?", rootElementID).
		Order("id").
		Find(&prerequisites).Error
	return prerequisites, err
}

// SavePrerequisite replaces the prerequisite and its items.
// NOTE: should run in a transaction
func (g *GormStore) SavePrerequisite(ctx context.Context, prerequisite *model.Prerequisite) error {
	if err := g.DeletePrerequisite(ctx, prerequisite.RootElementID, prerequisite.LearningUnitElementID); err != nil {
		return err
	}
	prerequisite.ID = 0
	for _, item := range prerequisite.Items {
		item.ID = 0
	}
	return g.db.WithContext(ctx).Create(prerequisite).Error
}

func (g *GormStore) DeletePrerequisite(ctx context.Context, rootElementID, learningUnitElementID int) error {
	db := g.db.WithContext(ctx)

	var ids []int
	err := db.Model(&model.Prerequisite{}).
		Where("root_element_id = ? AND learning_unit_element_id = ?", rootElementID, learningUnitElementID).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return err
	}
	return g.deletePrerequisites(db, ids)
}

func (g *GormStore) DeletePrerequisitesOfRoot(ctx context.Context, rootElementID int) error {
	db := g.db.WithContext(ctx)

	var ids []int
	err := db.Model(&model.Prerequisite{}).Where("root_element_id = ?", rootElementID).Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return err
	}
	return g.deletePrerequisites(db, ids)
}

func (g *GormStore) deletePrerequisites(db *gorm.DB, ids []int) error {
	if err := db.Where("prerequisite_id IN ?", ids).Delete(&model.PrerequisiteItem{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.Prerequisite{}).Error
}

func (g *GormStore) ListAuthorizedRelationships(ctx context.Context) ([]*model.AuthorizedRelationship, error) {
	var relationships []*model.AuthorizedRelationship
	err := g.db.WithContext(ctx).Order("parent_type, child_type").Find(&relationships).Error
	return relationships, err
}

func (g *GormStore) SaveAuthorizedRelationships(ctx context.Context, relationships []*model.AuthorizedRelationship) error {
	if len(relationships) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "parent_type"}, {Name: "child_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_count", "max_count"}),
	}).Create(&relationships).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
