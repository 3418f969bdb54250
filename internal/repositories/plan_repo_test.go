package repositories

import (
	"context"
	"testing"
	"time"

	"edumart/internal/common"
	"edumart/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PlanRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    PlanRepository
	planID  uuid.UUID
	context context.Context
}

func (suite *PlanRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewPlanRepository(mock)
	suite.planID = uuid.New()
	suite.context = context.Background()
}

func (suite *PlanRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestPlanRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PlanRepoTestSuite))
}

func planRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "display_name", "persona", "price", "currency", "duration_days",
		"max_listings", "max_job_posts", "max_browses_per_month", "data_delay_days", "teacher_data_delay_days",
		"can_advertise_vehicles", "instant_vehicle_alerts", "instant_job_alerts", "priority_listings", "analytics",
		"support_level", "is_active", "created_at", "updated_at",
	})
}

func (suite *PlanRepoTestSuite) addPlanRow(rows *pgxmock.Rows, id uuid.UUID, name string, price float64) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, name, "Display "+name, models.PersonaInstitute, price, "INR", 30,
		5, 3, 50, 2, 4,
		true, false, false, false, false,
		"standard", true, now, now,
	)
}

func (suite *PlanRepoTestSuite) TestGetByID_Success() {
	rows := suite.addPlanRow(planRows(), suite.planID, "starter", 999)

	suite.mock.ExpectQuery(`SELECT (.+) FROM plans WHERE id = \$1`).
		WithArgs(suite.planID).
		WillReturnRows(rows)

	plan, err := suite.repo.GetByID(suite.context, suite.planID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.planID, plan.ID)
	assert.Equal(suite.T(), "starter", plan.Name)
	assert.Equal(suite.T(), 5, plan.Features.MaxListings)
	assert.Equal(suite.T(), 4, plan.Features.TeacherDataDelayDays)
}

func (suite *PlanRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM plans WHERE id = \$1`).
		WithArgs(suite.planID).
		WillReturnError(pgx.ErrNoRows)

	plan, err := suite.repo.GetByID(suite.context, suite.planID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), plan)
}

func (suite *PlanRepoTestSuite) TestListActive_FilteredByPersona() {
	rows := suite.addPlanRow(planRows(), uuid.New(), "free", 0)
	rows = suite.addPlanRow(rows, uuid.New(), "premium", 4999)

	suite.mock.ExpectQuery(`SELECT (.+) FROM plans WHERE is_active = TRUE AND persona = \$1 ORDER BY persona, price ASC`).
		WithArgs(models.PersonaInstitute).
		WillReturnRows(rows)

	plans, err := suite.repo.ListActive(suite.context, models.PersonaInstitute)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), plans, 2)
	assert.Equal(suite.T(), "free", plans[0].Name)
}

func (suite *PlanRepoTestSuite) TestListActive_AllPersonas() {
	rows := suite.addPlanRow(planRows(), uuid.New(), "free", 0)

	suite.mock.ExpectQuery(`SELECT (.+) FROM plans WHERE is_active = TRUE ORDER BY persona, price ASC`).
		WillReturnRows(rows)

	plans, err := suite.repo.ListActive(suite.context, "")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), plans, 1)
}

func (suite *PlanRepoTestSuite) TestFindDefaultForPersona_Success() {
	rows := suite.addPlanRow(planRows(), suite.planID, "free", 0)

	suite.mock.ExpectQuery(`SELECT (.+) FROM plans WHERE is_active = TRUE AND persona = \$1 AND price = 0 ORDER BY created_at ASC LIMIT 1`).
		WithArgs(models.PersonaInstitute).
		WillReturnRows(rows)

	plan, err := suite.repo.FindDefaultForPersona(suite.context, models.PersonaInstitute)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), plan.IsFree())
}

func (suite *PlanRepoTestSuite) TestFindDefaultForPersona_NoneConfigured() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM plans WHERE is_active = TRUE AND persona = \$1 AND price = 0 ORDER BY created_at ASC LIMIT 1`).
		WithArgs(models.PersonaVendor).
		WillReturnError(pgx.ErrNoRows)

	plan, err := suite.repo.FindDefaultForPersona(suite.context, models.PersonaVendor)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), plan)
}

func (suite *PlanRepoTestSuite) TestSetActive_Success() {
	suite.mock.ExpectExec(`UPDATE plans SET is_active = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(false, suite.planID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.SetActive(suite.context, suite.planID, false)
	assert.NoError(suite.T(), err)
}

func (suite *PlanRepoTestSuite) TestSetActive_NotFound() {
	suite.mock.ExpectExec(`UPDATE plans SET is_active = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(true, suite.planID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.SetActive(suite.context, suite.planID, true)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *PlanRepoTestSuite) TestCreate_Success() {
	plan := &models.Plan{
		ID:           suite.planID,
		Name:         "starter",
		DisplayName:  "Starter",
		Persona:      models.PersonaVendor,
		Price:        999,
		Currency:     "INR",
		DurationDays: 30,
		Features: models.PlanFeatures{
			MaxListings:        10,
			MaxBrowsesPerMonth: models.UnlimitedQuota,
			SupportLevel:       "standard",
		},
		IsActive: true,
	}

	suite.mock.ExpectExec(`INSERT INTO plans (.+) VALUES (.+)`).
		WithArgs(plan.ID, plan.Name, plan.DisplayName, plan.Persona, plan.Price, plan.Currency, plan.DurationDays,
			plan.Features.MaxListings, plan.Features.MaxJobPosts, plan.Features.MaxBrowsesPerMonth,
			plan.Features.DataDelayDays, plan.Features.TeacherDataDelayDays,
			plan.Features.CanAdvertiseVehicles, plan.Features.InstantVehicleAlerts, plan.Features.InstantJobAlerts,
			plan.Features.PriorityListings, plan.Features.Analytics,
			plan.Features.SupportLevel, plan.IsActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, plan)
	assert.NoError(suite.T(), err)
}
