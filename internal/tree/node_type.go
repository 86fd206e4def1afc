package tree

import "sort"

// Kind selects the variant carried by a Node.
type Kind string

const (
	KindEducationGroup Kind = "EDUCATION_GROUP"
	KindGroup          Kind = "GROUP"
	KindLearningUnit   Kind = "LEARNING_UNIT"
	KindLearningClass  Kind = "LEARNING_CLASS"
)

// Category groups node types the way the catalog does.
type Category string

const (
	CategoryTraining      Category = "TRAINING"
	CategoryMiniTraining  Category = "MINI_TRAINING"
	CategoryGroup         Category = "GROUP"
	CategoryLearningUnit  Category = "LEARNING_UNIT"
	CategoryLearningClass Category = "LEARNING_CLASS"
)

// NodeType is the education group type of a node, or the learning unit / class marker.
type NodeType string

// trainings
const (
	TypeBachelor             NodeType = "BACHELOR"
	TypeAggregation          NodeType = "AGGREGATION"
	TypeCertificate          NodeType = "CERTIFICATE"
	TypeMasterMA120          NodeType = "MASTER_MA_120"
	TypeMasterMD120          NodeType = "MASTER_MD_120"
	TypeMasterMS120          NodeType = "MASTER_MS_120"
	TypeMasterMA180240       NodeType = "MASTER_MA_180_240"
	TypeMasterMD180240       NodeType = "MASTER_MD_180_240"
	TypeMasterMS180240       NodeType = "MASTER_MS_180_240"
	TypeMasterM1             NodeType = "MASTER_M1"
	TypeMasterMC             NodeType = "MASTER_MC"
	TypePgrmMaster120        NodeType = "PGRM_MASTER_120"
	TypePgrmMaster180240     NodeType = "PGRM_MASTER_180_240"
	TypeUniversityFirstCycle NodeType = "UNIVERSITY_FIRST_CYCLE_CERTIFICATE"
)

// mini trainings
const (
	TypeDeepening           NodeType = "DEEPENING"
	TypeOpenMinor           NodeType = "OPEN_MINOR"
	TypeSocietyMinor        NodeType = "SOCIETY_MINOR"
	TypeAccessMinor         NodeType = "ACCESS_MINOR"
	TypeDisciplinaryMinor   NodeType = "DISCIPLINARY_COMPLEMENT_MINOR"
	TypeOption              NodeType = "OPTION"
	TypeFSASpeciality       NodeType = "FSA_SPECIALITY"
	TypeMobilityPartnership NodeType = "MOBILITY_PARTNERSHIP"
)

// groups
const (
	TypeCommonCore                    NodeType = "COMMON_CORE"
	TypeSubGroup                      NodeType = "SUB_GROUP"
	TypeComplementaryModule           NodeType = "COMPLEMENTARY_MODULE"
	TypeOptionListChoice              NodeType = "OPTION_LIST_CHOICE"
	TypeMinorListChoice               NodeType = "MINOR_LIST_CHOICE"
	TypeMajorListChoice               NodeType = "MAJOR_LIST_CHOICE"
	TypeFinality120ListChoice         NodeType = "FINALITY_120_LIST_CHOICE"
	TypeFinality180ListChoice         NodeType = "FINALITY_180_LIST_CHOICE"
	TypeMobilityPartnershipListChoice NodeType = "MOBILITY_PARTNERSHIP_LIST_CHOICE"
)

const (
	TypeLearningUnit  NodeType = "LEARNING_UNIT"
	TypeLearningClass NodeType = "LEARNING_CLASS"
)

var categories = map[NodeType]Category{
	TypeBachelor:             CategoryTraining,
	TypeAggregation:          CategoryTraining,
	TypeCertificate:          CategoryTraining,
	TypeMasterMA120:          CategoryTraining,
	TypeMasterMD120:          CategoryTraining,
	TypeMasterMS120:          CategoryTraining,
	TypeMasterMA180240:       CategoryTraining,
	TypeMasterMD180240:       CategoryTraining,
	TypeMasterMS180240:       CategoryTraining,
	TypeMasterM1:             CategoryTraining,
	TypeMasterMC:             CategoryTraining,
	TypePgrmMaster120:        CategoryTraining,
	TypePgrmMaster180240:     CategoryTraining,
	TypeUniversityFirstCycle: CategoryTraining,

	TypeDeepening:           CategoryMiniTraining,
	TypeOpenMinor:           CategoryMiniTraining,
	TypeSocietyMinor:        CategoryMiniTraining,
	TypeAccessMinor:         CategoryMiniTraining,
	TypeDisciplinaryMinor:   CategoryMiniTraining,
	TypeOption:              CategoryMiniTraining,
	TypeFSASpeciality:       CategoryMiniTraining,
	TypeMobilityPartnership: CategoryMiniTraining,

	TypeCommonCore:                    CategoryGroup,
	TypeSubGroup:                      CategoryGroup,
	TypeComplementaryModule:           CategoryGroup,
	TypeOptionListChoice:              CategoryGroup,
	TypeMinorListChoice:               CategoryGroup,
	TypeMajorListChoice:               CategoryGroup,
	TypeFinality120ListChoice:         CategoryGroup,
	TypeFinality180ListChoice:         CategoryGroup,
	TypeMobilityPartnershipListChoice: CategoryGroup,

	TypeLearningUnit:  CategoryLearningUnit,
	TypeLearningClass: CategoryLearningClass,
}

// Category returns the category of t. Unknown types are considered groups.
func (t NodeType) Category() Category {
	if c, ok := categories[t]; ok {
		return c
	}
	return CategoryGroup
}

// Known reports whether t is a registered node type.
func (t NodeType) Known() bool {
	_, ok := categories[t]
	return ok
}

// IsFinality reports whether t is a master finality.
func (t NodeType) IsFinality() bool {
	switch t {
	case TypeMasterMA120, TypeMasterMD120, TypeMasterMS120,
		TypeMasterMA180240, TypeMasterMD180240, TypeMasterMS180240:
		return true
	}
	return false
}

// IsRootMaster2M reports whether t is the root program of a 2M master.
func (t NodeType) IsRootMaster2M() bool {
	return t == TypePgrmMaster120 || t == TypePgrmMaster180240
}

// KindOf returns the node kind matching t.
func KindOf(t NodeType) Kind {
	switch t.Category() {
	case CategoryLearningUnit:
		return KindLearningUnit
	case CategoryLearningClass:
		return KindLearningClass
	case CategoryGroup:
		return KindGroup
	default:
		return KindEducationGroup
	}
}

// TypesOf returns the registered node types of the given categories, sorted.
func TypesOf(cs ...Category) []NodeType {
	var types []NodeType
	for t, c := range categories {
		for _, wanted := range cs {
			if c == wanted {
				types = append(types, t)
				break
			}
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// RootNodeTypes returns the types of the nodes a program tree can start from.
func RootNodeTypes() []NodeType {
	return TypesOf(CategoryTraining, CategoryMiniTraining)
}
