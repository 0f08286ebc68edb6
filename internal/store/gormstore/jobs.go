package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

var jobEditable = []string{
	"title", "description", "category", "type",
	"salary_min", "salary_max", "salary_period",
	"requirements", "benefits", "location", "vacancies", "status", "deadline",
}

func (s *Store) CreateJob(ctx context.Context, j *models.JobVacancy) error {
	return translate(s.db(ctx).Omit("Company").Create(j).Error)
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*models.JobVacancy, error) {
	var j models.JobVacancy
	if err := s.db(ctx).Preload("Company").First(&j, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (s *Store) ListJobs(ctx context.Context, f store.JobFilter) ([]models.JobVacancy, int64, error) {
	q := s.db(ctx).Model(&models.JobVacancy{})
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.Category != "" {
		q = q.Where("lower(category) = lower(?)", f.Category)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Location != "" {
		q = q.Where("location ILIKE ?", "%"+f.Location+"%")
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var jobs []models.JobVacancy
	if err := paged(q.Preload("Company").Order("created_at DESC"), f.Page).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *Store) SaveJob(ctx context.Context, j *models.JobVacancy) error {
	res := s.db(ctx).Model(j).Select(jobEditable).Updates(j)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.JobProposal{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.JobVacancy{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.JobVacancy{}).Count(&n).Error
	return n, err
}

// CreateApplication bumps the counter first so a missing job is detected
// before the insert; a duplicate insert rolls the bump back.
func (s *Store) CreateApplication(ctx context.Context, a *models.Application) error {
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JobVacancy{}).
			Where("id = ?", a.JobID).
			UpdateColumn("applications_count", gorm.Expr("applications_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Omit("Job", "Applicant").Create(a).Error
	})
	return translate(err)
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := s.db(ctx).
		Preload("Job").
		Preload("Job.Company").
		Preload("Applicant").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]models.Application, int64, error) {
	q := s.db(ctx).Model(&models.Application{})
	if f.JobID != nil {
		q = q.Where("job_id = ?", *f.JobID)
	}
	if f.ApplicantID != nil {
		q = q.Where("applicant_id = ?", *f.ApplicantID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Application
	err := paged(q.Preload("Job").Preload("Job.Company").Preload("Applicant").Order("created_at DESC"), f.Page).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) RespondApplication(ctx context.Context, id uuid.UUID, r store.Response) (*models.Application, error) {
	updates := map[string]any{"status": r.To}
	if r.Message != "" {
		updates["response_message"] = r.Message
	}
	if !r.At.IsZero() {
		updates["responded_at"] = r.At
	}

	db := s.db(ctx)
	res := db.Model(&models.Application{}).Where("id = ? AND status = ?", id, r.From).Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, casMiss(db, &models.Application{}, id)
	}
	return s.GetApplication(ctx, id)
}

func (s *Store) CountApplications(ctx context.Context) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.Application{}).Count(&n).Error
	return n, err
}

func (s *Store) CreateProposal(ctx context.Context, p *models.JobProposal) error {
	return translate(s.db(ctx).Omit("Job", "Provider", "Company").Create(p).Error)
}

func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*models.JobProposal, error) {
	var p models.JobProposal
	err := s.db(ctx).
		Preload("Job").
		Preload("Provider").
		Preload("Company").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListProposals(ctx context.Context, f store.ProposalFilter) ([]models.JobProposal, int64, error) {
	q := s.db(ctx).Model(&models.JobProposal{})
	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.JobProposal
	err := paged(q.Preload("Job").Preload("Provider").Preload("Company").Order("created_at DESC"), f.Page).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) RespondProposal(ctx context.Context, id uuid.UUID, r store.Response) (*models.JobProposal, error) {
	db := s.db(ctx)
	res := db.Model(&models.JobProposal{}).
		Where("id = ? AND status = ?", id, r.From).
		Updates(map[string]any{"status": r.To, "response_message": r.Message, "responded_at": r.At})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, casMiss(db, &models.JobProposal{}, id)
	}
	return s.GetProposal(ctx, id)
}
