package stubapi

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/carmarket/carmarket/internal/api"
)

// DemoPhone is the pre-registered account.
const DemoPhone = "+77011234567"

// DemoPassword is DemoPhone's password.
const DemoPassword = "carmarket2024"

func (s *Server) seed() {
	now := s.now().UTC()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	hash, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	s.users[DemoPhone] = &user{
		ID:            "00000000-0000-4000-8000-000000000001",
		FirstName:     "Айдос",
		LastName:      "Нурланов",
		Phone:         DemoPhone,
		Email:         "aidos@example.kz",
		PasswordHash:  hash,
		PhoneVerified: true,
	}

	s.moderation = []*api.ModerationItem{
		{ID: 1, Title: "Toyota Camry 2018", Description: "Один владелец, полная комплектация", UserName: "Айгерим", SubmittedDate: ago(2 * time.Hour), Priority: "high", Status: api.ModerationPending, AutoModerationScore: 42},
		{ID: 2, Title: "Lada Vesta 2021", Description: "Гаражное хранение", UserName: "Ержан", SubmittedDate: ago(5 * time.Hour), Priority: "medium", Status: api.ModerationPending, AutoModerationScore: 88},
		{ID: 3, Title: "Hyundai Tucson 2020", UserName: "Дана", SubmittedDate: ago(26 * time.Hour), Priority: "low", Status: api.ModerationApproved, AutoModerationScore: 95},
		{ID: 4, Title: "BMW X5 за 1 ₸", UserName: "anon", SubmittedDate: ago(30 * time.Hour), Priority: "high", Status: api.ModerationRejected, RejectionReason: "Недостоверная цена"},
	}

	s.reports = []*api.Report{
		{ID: 1, Reason: "fraud", ReporterName: "Марат", Description: "Просит предоплату на карту", ContentType: "listing", ContentTitle: "Toyota Land Cruiser 2022", ContentAuthor: "seller77", Status: api.ReportOpen, CreatedDate: ago(time.Hour)},
		{ID: 2, Reason: "spam", ReporterName: "Алия", Description: "Одно и то же объявление десять раз", ContentType: "listing", ContentTitle: "Kia Rio 2019", ContentAuthor: "autosalon_kz", Status: api.ReportOpen, CreatedDate: ago(3 * time.Hour)},
		{ID: 3, Reason: "inappropriate", ReporterName: "Руслан", ContentType: "comment", ContentTitle: "Комментарий к Nissan X-Trail", ContentAuthor: "guest", Status: api.ReportDismissed, CreatedDate: ago(48 * time.Hour)},
	}

	seedTx := []struct {
		kind, status, desc, method string
		amount                     float64
		age                        time.Duration
	}{
		{"payment", "completed", "VIP размещение объявления #12345", "card", 2000, 72 * time.Hour},
		{"payment", "pending", "Выделенное объявление #12346", "kaspi", 1000, 48 * time.Hour},
		{"refund", "completed", "Возврат за поднятие в поиске #12344", "card", 500, 36 * time.Hour},
		{"bonus", "completed", "Бонус за активность", "system", 300, 24 * time.Hour},
		{"payment", "failed", "Поднятие в поиске #12347", "qiwi", 500, 12 * time.Hour},
	}
	for _, t := range seedTx {
		tx := s.addTransaction(t.kind, t.amount, t.status, t.desc, t.method)
		tx.CreatedDate = ago(t.age)
	}

	s.activities = []api.Activity{
		{Action: "Новая жалоба", UserName: "Марат", CreatedDate: ago(time.Hour)},
		{Action: "Объявление отправлено на модерацию", UserName: "Айгерим", CreatedDate: ago(2 * time.Hour)},
	}
}
