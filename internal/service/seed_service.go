package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chumcred/academy-lmp-api/internal/models"
	"github.com/chumcred/academy-lmp-api/pkg/config"
)

type seedUserRepo interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
}

type seedModuleRepo interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, module *models.Module) error
	FindByWeek(ctx context.Context, week int) (*models.Module, error)
}

type seedAssignmentRepo interface {
	Create(ctx context.Context, assignment *models.Assignment) error
}

type seedMaterialRepo interface {
	ExistsTuple(ctx context.Context, moduleID, title string, kind models.MaterialKind, pathOrURL string) (bool, error)
	Create(ctx context.Context, material *models.Material) error
}

// SeedResult reports what a seeding pass created. AdminNotice carries the
// plaintext temporary admin password exactly once, on the run that created
// the account; it is never persisted or emitted again.
type SeedResult struct {
	AdminCreated     bool
	AdminNotice      string
	ModulesCreated   int
	MaterialsCreated int
}

// SeedService provisions default content on startup. Two idempotence
// strategies coexist on purpose: users and modules are seeded only when their
// table is empty, while materials are checked per exact tuple on every run,
// so a manually deleted seed material is re-inserted by the next pass.
type SeedService struct {
	users       seedUserRepo
	modules     seedModuleRepo
	assignments seedAssignmentRepo
	materials   seedMaterialRepo
	cfg         config.SeedConfig
	logger      *zap.Logger
}

// NewSeedService constructs SeedService.
func NewSeedService(users seedUserRepo, modules seedModuleRepo, assignments seedAssignmentRepo, materials seedMaterialRepo, cfg config.SeedConfig, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, modules: modules, assignments: assignments, materials: materials, cfg: cfg, logger: logger}
}

type seedModule struct {
	week        int
	title       string
	description string
	prompt      string
}

type seedMaterial struct {
	title string
	kind  models.MaterialKind
	path  string
}

var seedCurriculum = []seedModule{
	{1, "Introduction to AI & Workplace Applications",
		"Core AI concepts, responsible AI, and cross-industry case studies (telecoms, sales, credit, finance, analytics).",
		"Identify three job tasks you will enhance with AI and outline an adoption plan (tools, expected gain, risks)."},
	{2, "AI for Sales & Customer Engagement",
		"AI CRM, predictive lead scoring, churn management, and conversational AI for customer support.",
		"Build a customer segmentation and draft an AI-driven sales script for a chosen segment."},
	{3, "AI in Credit & Finance",
		"Credit scoring, fraud/anomaly detection, forecasting, compliance and governance in AI.",
		"Create a credit risk dashboard highlighting risky vs safe clients. Explain your approach in 200 words."},
	{4, "AI for Data Analysis & Business Intelligence",
		"AI-assisted analytics with Excel/Power BI, NLP for text data, and data storytelling.",
		"Analyze a dataset using Power BI/Excel AI. Submit a dashboard + 1-page executive summary."},
	{5, "AI in Telecoms & Network Optimization",
		"Predictive maintenance, ARPU optimization, churn reduction, and retail expansion insights.",
		"Using telecom KPIs (RGB, ARPU, BTS), identify high-growth regions and recommend actions."},
	{6, "Capstone & Future of AI at Work",
		"Generative AI, AutoML, AI in 5G/IoT, best practices, and career pathways. Capstone showcase.",
		"Capstone: Propose and present an AI-powered solution for a real business problem in your domain."},
}

var seedMaterials = map[int][]seedMaterial{
	1: {
		{"OECD AI Principles (overview)", models.MaterialKindLink, "https://oecd.ai/en/ai-principles"},
		{"Microsoft Responsible AI Standard (overview)", models.MaterialKindLink, "https://www.microsoft.com/en-us/ai/responsible-ai"},
		{"Power BI Documentation", models.MaterialKindLink, "https://learn.microsoft.com/power-bi/"},
		{"Streamlit Docs", models.MaterialKindLink, "https://docs.streamlit.io/"},
	},
	2: {
		{"Salesforce Einstein Overview", models.MaterialKindLink, "https://www.salesforce.com/products/einstein/overview/"},
		{"HubSpot AI Features", models.MaterialKindLink, "https://www.hubspot.com/products/ai"},
		{"Churn Prediction (Concepts & Examples)", models.MaterialKindLink, "https://en.wikipedia.org/wiki/Customer_attrition"},
		{"Conversational AI: Design Best Practices", models.MaterialKindLink, "https://cloud.google.com/architecture/dialogflow-design"},
		{"Power BI: Customer Segmentation Tutorial", models.MaterialKindLink, "https://learn.microsoft.com/power-bi/consumer/end-user-segmentation"},
	},
	3: {
		{"Credit Scoring Basics (PD/LGD/EAD)", models.MaterialKindLink, "https://en.wikipedia.org/wiki/Credit_scoring"},
		{"Anomaly & Fraud Detection Guide (sklearn)", models.MaterialKindLink, "https://scikit-learn.org/stable/modules/outlier_detection.html"},
		{"Time Series Forecasting (Intro)", models.MaterialKindLink, "https://otexts.com/fpp3/"},
		{"Model Risk Management (General Concepts)", models.MaterialKindLink, "https://en.wikipedia.org/wiki/Model_risk"},
		{"Pandas + Finance Basics", models.MaterialKindLink, "https://pandas.pydata.org/docs/user_guide/index.html"},
	},
	4: {
		{"Power BI Learning Path", models.MaterialKindLink, "https://learn.microsoft.com/power-bi/"},
		{"Excel with Copilot (Overview)", models.MaterialKindLink, "https://support.microsoft.com/en-us/office/get-started-with-copilot-in-excel"},
		{"NLP 101 (Tokenization → Sentiment → Topics)", models.MaterialKindLink, "https://scikit-learn.org/stable/tutorial/text_analytics/working_with_text.html"},
		{"Tableau: Get Started", models.MaterialKindLink, "https://www.tableau.com/learn/training"},
		{"Data Storytelling Patterns", models.MaterialKindLink, "https://www.data-to-viz.com/"},
	},
	5: {
		{"AI for Predictive Maintenance (Intro)", models.MaterialKindLink, "https://en.wikipedia.org/wiki/Predictive_maintenance"},
		{"Telecom Churn Use-Cases (Overview)", models.MaterialKindLink, "https://www.ibm.com/docs/en/cognos-analytics/11.1.0?topic=applications-customer-churn"},
		{"Time Series for KPIs (ARPU/Usage)", models.MaterialKindLink, "https://otexts.com/fpp3/forecasting.html"},
		{"Geospatial in Power BI", models.MaterialKindLink, "https://learn.microsoft.com/power-bi/visuals/power-bi-map-tips-and-tricks"},
		{"Network Optimization (Concepts)", models.MaterialKindLink, "https://en.wikipedia.org/wiki/Network_optimization"},
	},
	6: {
		{"Intro to Generative AI (High level)", models.MaterialKindLink, "https://cloud.google.com/learn/what-is-generative-ai"},
		{"AutoML Concepts", models.MaterialKindLink, "https://en.wikipedia.org/wiki/Automated_machine_learning"},
		{"MLOps Overview", models.MaterialKindLink, "https://www.microsoft.com/en-us/research/project/mlops/"},
		{"Responsible AI Playbook (General)", models.MaterialKindLink, "https://ai.google/responsibility/"},
		{"Presentation Best Practices", models.MaterialKindLink, "https://www.duarte.com/presentation-skills-resources/"},
	},
}

// EnsureSeed provisions default content. Safe to call on every process start.
func (s *SeedService) EnsureSeed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	if err := s.seedAdmin(ctx, result); err != nil {
		return nil, err
	}
	if err := s.seedModules(ctx, result); err != nil {
		return nil, err
	}
	if err := s.seedMaterials(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *SeedService) seedAdmin(ctx context.Context, result *SeedResult) error {
	total, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if total > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Email:        s.cfg.AdminEmail,
		PasswordHash: string(hash),
		FullName:     s.cfg.AdminName,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	result.AdminCreated = true
	result.AdminNotice = fmt.Sprintf("Default admin -> %s / %s (change after first login).", s.cfg.AdminEmail, s.cfg.AdminPassword)
	return nil
}

func (s *SeedService) seedModules(ctx context.Context, result *SeedResult) error {
	total, err := s.modules.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed modules: %w", err)
	}
	if total > 0 {
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, sm := range seedCurriculum {
		description := sm.description
		module := &models.Module{
			WeekNumber:  sm.week,
			Title:       sm.title,
			Description: &description,
		}
		if err := s.modules.Create(ctx, module); err != nil {
			return fmt.Errorf("seed module week %d: %w", sm.week, err)
		}

		prompt := sm.prompt
		due := today.AddDate(0, 0, 7*sm.week)
		assignment := &models.Assignment{
			ModuleID: module.ID,
			Title:    fmt.Sprintf("Week %d Assignment", sm.week),
			Prompt:   &prompt,
			DueDate:  &due,
		}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			return fmt.Errorf("seed assignment week %d: %w", sm.week, err)
		}
		result.ModulesCreated++
	}
	return nil
}

// seedMaterials runs per-tuple checks unconditionally, independent of whether
// the modules pass inserted anything.
func (s *SeedService) seedMaterials(ctx context.Context, result *SeedResult) error {
	for week, items := range seedMaterials {
		module, err := s.modules.FindByWeek(ctx, week)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return fmt.Errorf("seed materials week %d: %w", week, err)
		}
		for _, item := range items {
			exists, err := s.materials.ExistsTuple(ctx, module.ID, item.title, item.kind, item.path)
			if err != nil {
				return fmt.Errorf("seed materials week %d: %w", week, err)
			}
			if exists {
				continue
			}
			material := &models.Material{
				ModuleID:  module.ID,
				Title:     item.title,
				Kind:      item.kind,
				PathOrURL: item.path,
			}
			if err := s.materials.Create(ctx, material); err != nil {
				return fmt.Errorf("seed materials week %d: %w", week, err)
			}
			result.MaterialsCreated++
		}
	}
	return nil
}
