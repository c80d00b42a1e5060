package mocks

import (
	"context"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence. The
// repository accessors return the embedded repository mocks.
type MockPersistence struct {
	mock.Mock

	Projects   *MockProjectRepository
	Nodes      *MockNodeRepository
	Edges      *MockEdgeRepository
	Milestones *MockMilestoneRepository
	History    *MockActionHistoryRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Projects:   &MockProjectRepository{},
		Nodes:      &MockNodeRepository{},
		Edges:      &MockEdgeRepository{},
		Milestones: &MockMilestoneRepository{},
		History:    &MockActionHistoryRepository{},
	}
}

// AssertExpectations checks the persistence mock and every repository mock.
func (m *MockPersistence) AssertExpectations(t mock.TestingT) bool {
	return m.Mock.AssertExpectations(t) &&
		m.Projects.AssertExpectations(t) &&
		m.Nodes.AssertExpectations(t) &&
		m.Edges.AssertExpectations(t) &&
		m.Milestones.AssertExpectations(t) &&
		m.History.AssertExpectations(t)
}

func (m *MockPersistence) ProjectRepository() persistence.ProjectRepository {
	return m.Projects
}

func (m *MockPersistence) NodeRepository() persistence.NodeRepository {
	return m.Nodes
}

func (m *MockPersistence) EdgeRepository() persistence.EdgeRepository {
	return m.Edges
}

func (m *MockPersistence) MilestoneRepository() persistence.MilestoneRepository {
	return m.Milestones
}

func (m *MockPersistence) ActionHistoryRepository() persistence.ActionHistoryRepository {
	return m.History
}

func (m *MockPersistence) ReplaceGraph(ctx context.Context, graph *models.Graph) error {
	args := m.Called(ctx, graph)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockProjectRepository is a mock implementation of persistence.ProjectRepository.
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)

	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockNodeRepository is a mock implementation of persistence.NodeRepository.
type MockNodeRepository struct {
	mock.Mock
}

func (m *MockNodeRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Node, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Node), args.Error(1)
}

func (m *MockNodeRepository) Get(ctx context.Context, projectID, nodeID string) (*models.Node, error) {
	args := m.Called(ctx, projectID, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Node), args.Error(1)
}

func (m *MockNodeRepository) Save(ctx context.Context, node *models.Node) error {
	args := m.Called(ctx, node)

	return args.Error(0)
}

func (m *MockNodeRepository) Delete(ctx context.Context, projectID, nodeID string) error {
	args := m.Called(ctx, projectID, nodeID)

	return args.Error(0)
}

// MockEdgeRepository is a mock implementation of persistence.EdgeRepository.
type MockEdgeRepository struct {
	mock.Mock
}

func (m *MockEdgeRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Edge, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Edge), args.Error(1)
}

func (m *MockEdgeRepository) Get(ctx context.Context, projectID, edgeID string) (*models.Edge, error) {
	args := m.Called(ctx, projectID, edgeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Edge), args.Error(1)
}

func (m *MockEdgeRepository) Save(ctx context.Context, edge *models.Edge) error {
	args := m.Called(ctx, edge)

	return args.Error(0)
}

func (m *MockEdgeRepository) Delete(ctx context.Context, projectID, edgeID string) error {
	args := m.Called(ctx, projectID, edgeID)

	return args.Error(0)
}

// MockMilestoneRepository is a mock implementation of persistence.MilestoneRepository.
type MockMilestoneRepository struct {
	mock.Mock
}

func (m *MockMilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Milestone, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) Get(ctx context.Context, projectID, milestoneID string) (*models.Milestone, error) {
	args := m.Called(ctx, projectID, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) Save(ctx context.Context, milestone *models.Milestone) error {
	args := m.Called(ctx, milestone)

	return args.Error(0)
}

func (m *MockMilestoneRepository) Delete(ctx context.Context, projectID, milestoneID string) error {
	args := m.Called(ctx, projectID, milestoneID)

	return args.Error(0)
}

// MockActionHistoryRepository is a mock implementation of persistence.ActionHistoryRepository.
type MockActionHistoryRepository struct {
	mock.Mock
}

func (m *MockActionHistoryRepository) Append(ctx context.Context, entry *models.ActionHistory) error {
	args := m.Called(ctx, entry)

	return args.Error(0)
}

func (m *MockActionHistoryRepository) ListByNode(ctx context.Context, projectID, nodeID string, limit int) ([]*models.ActionHistory, error) {
	args := m.Called(ctx, projectID, nodeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.ActionHistory), args.Error(1)
}
