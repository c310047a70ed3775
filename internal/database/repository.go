package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository handles entity reads and the aggregate queries the scoring
// engine consumes. Absence of related rows is a valid zero-result; only a
// missing root entity surfaces as sql.ErrNoRows to the caller.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// ProjectMetrics holds the raw aggregates project scoring needs
type ProjectMetrics struct {
	CollaboratorCount       int
	HasExternalCollaborator bool
	ProductCount            int
	DOICount                int
	AvgImpactFactor         float64
	TotalCitations          int
	DistinctCategoryGroups  int
	HasInnovativeProduct    bool
}

// OwnerLoad is one researcher's count of active owned projects
type OwnerLoad struct {
	ResearcherID string `json:"researcher_id"`
	ActiveCount  int    `json:"active_count"`
}

// GetProject loads a project by id
func (r *Repository) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, abstract, introduction, methodology, keywords, budget,
			status, owner_id, progress_percent, start_date, end_date, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(
		&p.ID, &p.Title, &p.Abstract, &p.Introduction, &p.Methodology, &p.Keywords,
		&p.Budget, &p.Status, &p.OwnerID, &p.ProgressPercent, &p.StartDate, &p.EndDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct loads a product by id
func (r *Repository) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, description, category, category_group, doi,
			journal, impact_factor, citation_count, publication_date, created_at, updated_at
		FROM products WHERE id = ?
	`, id).Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.Description, &p.Category, &p.CategoryGroup,
		&p.DOI, &p.Journal, &p.ImpactFactor, &p.CitationCount, &p.PublicationDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectMetrics reads the aggregates project scoring needs. Missing
// related rows produce zero values, not errors.
func (r *Repository) GetProjectMetrics(ctx context.Context, projectID string) (*ProjectMetrics, error) {
	m := &ProjectMetrics{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN role = 'EXTERNAL' THEN 1 ELSE 0 END), 0)
		FROM project_collaborators WHERE project_id = ?
	`, projectID).Scan(&m.CollaboratorCount, &externalCountScanner{&m.HasExternalCollaborator})
	if err != nil {
		return nil, fmt.Errorf("failed to count collaborators: %w", err)
	}

	var innovativeCount int
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN doi != '' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(NULLIF(impact_factor, 0)), 0),
			COALESCE(SUM(citation_count), 0),
			COUNT(DISTINCT NULLIF(category_group, '')),
			COALESCE(SUM(CASE WHEN category_group IN ('SOFTWARE', 'PATENT', 'DATABASE') THEN 1 ELSE 0 END), 0)
		FROM products WHERE project_id = ?
	`, projectID).Scan(
		&m.ProductCount, &m.DOICount, &m.AvgImpactFactor, &m.TotalCitations,
		&m.DistinctCategoryGroups, &innovativeCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}
	m.HasInnovativeProduct = innovativeCount > 0

	return m, nil
}

// ActiveScoringWeights returns the configured sub-score weights. An empty
// map is valid; the calculator falls back to documented defaults.
func (r *Repository) ActiveScoringWeights(ctx context.Context) (map[string]float64, error) {
	stmt, err := r.db.GetPreparedStatement("get_scoring_weights")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query scoring weights: %w", err)
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var name string
		var weight float64
		if err := rows.Scan(&name, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan scoring weight: %w", err)
		}
		weights[name] = weight
	}
	return weights, rows.Err()
}

// OverloadedOwners returns researchers owning more active projects than the
// threshold, for the risk analysis scan.
func (r *Repository) OverloadedOwners(ctx context.Context, threshold int) ([]OwnerLoad, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT owner_id, COUNT(*) AS active_count
		FROM projects WHERE status = 'ACTIVE'
		GROUP BY owner_id
		HAVING COUNT(*) > ?
		ORDER BY active_count DESC
	`, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query overloaded owners: %w", err)
	}
	defer rows.Close()

	var result []OwnerLoad
	for rows.Next() {
		var load OwnerLoad
		if err := rows.Scan(&load.ResearcherID, &load.ActiveCount); err != nil {
			return nil, fmt.Errorf("failed to scan owner load: %w", err)
		}
		result = append(result, load)
	}
	return result, rows.Err()
}

// CreateProject inserts a project row
func (r *Repository) CreateProject(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = ProjectActive
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, abstract, introduction, methodology, keywords,
			budget, status, owner_id, progress_percent, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Abstract, p.Introduction, p.Methodology, p.Keywords,
		p.Budget, p.Status, p.OwnerID, p.ProgressPercent, p.StartDate, p.EndDate,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// CreateProduct inserts a product row
func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, project_id, name, description, category, category_group,
			doi, journal, impact_factor, citation_count, publication_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ProjectID, p.Name, p.Description, p.Category, p.CategoryGroup,
		p.DOI, p.Journal, p.ImpactFactor, p.CitationCount, p.PublicationDate,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// AddCollaborator inserts a collaborator row
func (r *Repository) AddCollaborator(ctx context.Context, c *Collaborator) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Role == "" {
		c.Role = RoleInternal
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_collaborators (id, project_id, researcher_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.ProjectID, c.ResearcherID, c.Role, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

// UpsertScoringCriterion stores one named weight, replacing any prior value
func (r *Repository) UpsertScoringCriterion(ctx context.Context, name string, weight float64) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scoring_criteria (id, name, weight, active, created_at, updated_at)
		VALUES (?, ?, ?, TRUE, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			weight = excluded.weight,
			active = TRUE,
			updated_at = excluded.updated_at
	`, uuid.New().String(), name, weight, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert scoring criterion: %w", err)
	}
	return nil
}

// externalCountScanner maps a SUM(...) count into a presence flag during Scan
type externalCountScanner struct {
	present *bool
}

func (s *externalCountScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*s.present = v > 0
	case float64:
		*s.present = v > 0
	case nil:
		*s.present = false
	default:
		return fmt.Errorf("unexpected type %T for external collaborator count", src)
	}
	return nil
}
