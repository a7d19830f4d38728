package mockstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecoexchange/recycle/internal/model"
)

const placeholderImage = "/placeholder.svg?height=200&width=300"

// seedListings returns the demonstration catalog written on first access.
func seedListings(now time.Time) []Listing {
	type demo struct {
		name, category, description string
		price, quantity             int64
		userID, userName            string
		status, deal                string
	}
	demos := []demo{
		{"ПЭТ бутылки", model.CategoryPlastic, "Чистые пластиковые бутылки без крышек и этикеток", 25, 100, "user1", "Иван Петров", model.MaterialStatusActive, model.DealSell},
		{"Макулатура", model.CategoryPaper, "Газеты, журналы, книги, картон", 15, 200, "user2", "Анна Иванова", model.MaterialStatusActive, model.DealBuy},
		{"Алюминиевые банки", model.CategoryMetal, "Чистые алюминиевые банки от напитков", 80, 50, "user3", "Петр Сидоров", model.MaterialStatusActive, model.DealSell},
		{"Стеклянные бутылки", model.CategoryGlass, "Стеклянные бутылки любого цвета", 10, 150, "user1", "Иван Петров", model.MaterialStatusActive, model.DealBuy},
		{"Старая электроника", model.CategoryElectronics, "Компьютеры, телефоны, платы и другая электроника", 200, 30, "user2", "Анна Иванова", model.MaterialStatusPending, model.DealSell},
		{"Картонные коробки", model.CategoryPaper, "Чистые картонные коробки", 20, 100, "user3", "Петр Сидоров", model.MaterialStatusActive, model.DealBuy},
	}

	out := make([]Listing, len(demos))
	for i, d := range demos {
		out[i] = Listing{
			ID:          uuid.NewString(),
			Name:        d.name,
			Category:    d.category,
			Description: d.description,
			Price:       decimal.NewFromInt(d.price),
			Quantity:    decimal.NewFromInt(d.quantity),
			Unit:        model.DefaultUnit,
			Location:    "Москва",
			ImageURL:    placeholderImage,
			UserID:      d.userID,
			UserName:    d.userName,
			DealType:    d.deal,
			Status:      d.status,
			CreatedAt:   now,
		}
	}
	return out
}

// seedNotifications returns the demonstration inboxes of user1 and user2.
func seedNotifications(now time.Time) map[string][]Notification {
	return map[string][]Notification{
		"user1": {
			{
				ID:        uuid.NewString(),
				UserID:    "user1",
				Title:     "Новая заявка",
				Message:   "Ваша заявка на сдачу макулатуры была принята",
				CreatedAt: now,
			},
			{
				ID:        uuid.NewString(),
				UserID:    "user1",
				Title:     "Сделка завершена",
				Message:   "Сделка по сдаче электроники успешно завершена",
				Read:      true,
				CreatedAt: now.Add(-24 * time.Hour),
			},
		},
		"user2": {
			{
				ID:        uuid.NewString(),
				UserID:    "user2",
				Title:     "Новое сообщение",
				Message:   "У вас новое сообщение от пользователя Иван Петров",
				CreatedAt: now,
			},
		},
	}
}
