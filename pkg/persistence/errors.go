// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrProjectNotFound indicates a project was not found by the given identifier.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectAlreadyExists indicates a project with the same identifier already exists.
	ErrProjectAlreadyExists = errors.New("project already exists")

	// ErrNodeNotFound indicates a node was not found in the project.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeAlreadyExists indicates the project already has a node with the given identifier.
	ErrNodeAlreadyExists = errors.New("node already exists")

	// ErrEdgeNotFound indicates an edge was not found in the project.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrMilestoneNotFound indicates a milestone was not found in the project.
	ErrMilestoneNotFound = errors.New("milestone not found")
)

// ProjectError wraps project-level errors with additional context.
type ProjectError struct {
	Op        string // Operation being performed (e.g., "Get", "Save", "Delete")
	ProjectID string
	Err       error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("%s operation failed for project %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for project errors.
func (e *ProjectError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewProjectError(op, projectID string, err error) *ProjectError {
	return &ProjectError{Op: op, ProjectID: projectID, Err: err}
}

// EntityError wraps errors about an entity that lives inside a project.
type EntityError struct {
	Op        string
	Kind      string // node, edge, milestone
	ProjectID string
	ID        string
	Err       error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s in project %s: %v", e.Op, e.Kind, e.ID, e.ProjectID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

func (e *EntityError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewNodeError(op, projectID, nodeID string, err error) *EntityError {
	return &EntityError{Op: op, Kind: "node", ProjectID: projectID, ID: nodeID, Err: err}
}

func NewEdgeError(op, projectID, edgeID string, err error) *EntityError {
	return &EntityError{Op: op, Kind: "edge", ProjectID: projectID, ID: edgeID, Err: err}
}

func NewMilestoneError(op, projectID, milestoneID string, err error) *EntityError {
	return &EntityError{Op: op, Kind: "milestone", ProjectID: projectID, ID: milestoneID, Err: err}
}

// IsProjectNotFound checks if an error indicates a project was not found.
func IsProjectNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}

func IsProjectAlreadyExists(err error) bool {
	return errors.Is(err, ErrProjectAlreadyExists)
}

func IsNodeAlreadyExists(err error) bool {
	return errors.Is(err, ErrNodeAlreadyExists)
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

func IsEdgeNotFound(err error) bool {
	return errors.Is(err, ErrEdgeNotFound)
}

func IsMilestoneNotFound(err error) bool {
	return errors.Is(err, ErrMilestoneNotFound)
}

// IsNotFound reports any of the not-found errors.
func IsNotFound(err error) bool {
	return IsProjectNotFound(err) || IsNodeNotFound(err) || IsEdgeNotFound(err) || IsMilestoneNotFound(err)
}
