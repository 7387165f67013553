package devserver

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shopapp/internal/initdata"
	"github.com/mmeshcher/shopapp/internal/model"
)

var (
	// ErrUserNotFound возвращается, если пользователя нет.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownItem возвращается для позиции, которой нет в каталоге.
	ErrUnknownItem = errors.New("unknown catalog item")
)

// Order описывает сохранённую заявку.
type Order struct {
	ID            int64
	UserID        int64
	Items         []model.OrderItem
	Comment       string
	DeliveryPrice decimal.Decimal
	Total         decimal.Decimal
	Status        string
	CreatedAt     time.Time
}

// Review описывает отзыв, ожидающий модерации.
type Review struct {
	UserID int64
	model.ReviewRequest
	Moderated bool
}

// Feedback описывает сообщение обратной связи.
type Feedback struct {
	UserID int64
	model.FeedbackRequest
	Status string
}

// Store хранит данные сервера разработки в памяти.
type Store struct {
	mu sync.Mutex

	catalog   []model.CatalogItem
	users     map[int64]*model.User
	byTG      map[int64]int64
	orders    []Order
	reviews   []Review
	feedbacks []Feedback

	nextUserID  int64
	nextOrderID int64
}

// NewStore создаёт хранилище с указанным каталогом.
func NewStore(catalog []model.CatalogItem) *Store {
	return &Store{
		catalog:     catalog,
		users:       make(map[int64]*model.User),
		byTG:        make(map[int64]int64),
		nextUserID:  1,
		nextOrderID: 1,
	}
}

// DefaultCatalog возвращает каталог, с которым запускается сервер разработки.
func DefaultCatalog() []model.CatalogItem {
	return []model.CatalogItem{
		{Type: model.KindProduct, ID: 1, Name: "Брус 150×150", Unit: "м³", Price: 14500, Rating: 4.5},
		{Type: model.KindProduct, ID: 2, Name: "Доска обрезная 50×150", Unit: "м³", Price: 12800, Rating: 4},
		{Type: model.KindProduct, ID: 3, Name: "Вагонка", Unit: "м²", Price: 420.5},
		{Type: model.KindService, ID: 1, Name: "Распил в размер", Unit: "рез", Price: 35},
		{Type: model.KindService, ID: 2, Name: "Доставка по городу", Unit: "рейс", Price: 2500, Rating: 5},
	}
}

// Catalog возвращает копию каталога.
func (s *Store) Catalog() []model.CatalogItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]model.CatalogItem, len(s.catalog))
	copy(res, s.catalog)
	return res
}

// UpsertPlatformUser находит пользователя по идентификатору платформы или создаёт нового.
// Непустые имя и логин обновляются.
func (s *Store) UpsertPlatformUser(u initdata.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byTG[u.ID]; ok {
		existing := s.users[id]
		if u.Username != "" {
			existing.Username = u.Username
		}
		if u.FirstName != "" {
			existing.FirstName = u.FirstName
		}
		if u.LastName != "" {
			existing.LastName = u.LastName
		}
		cp := *existing
		return &cp
	}

	created := &model.User{
		ID:         s.nextUserID,
		TelegramID: u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
	s.nextUserID++
	s.users[created.ID] = created
	s.byTG[u.ID] = created.ID

	cp := *created
	return &cp
}

// User возвращает пользователя по идентификатору.
func (s *Store) User(id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdateProfile сохраняет контактные данные пользователя.
func (s *Store) UpdateProfile(id int64, p model.ProfileRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Phone = p.Phone
	u.Email = p.Email
	u.DeliveryAddress = p.DeliveryAddress
	return nil
}

// CreateOrder сохраняет заявку, рассчитывая цены по каталогу.
func (s *Store) CreateOrder(userID int64, req model.OrderRequest, now time.Time) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range req.Items {
		item, ok := s.findLocked(it.Type, it.ID)
		if !ok {
			return Order{}, ErrUnknownItem
		}
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromFloat(it.Qty)))
	}

	delivery := decimal.NewFromFloat(req.DeliveryPrice)
	o := Order{
		ID:            s.nextOrderID,
		UserID:        userID,
		Items:         append([]model.OrderItem(nil), req.Items...),
		Comment:       req.Comment,
		DeliveryPrice: delivery,
		Total:         total.Add(delivery),
		Status:        "new",
		CreatedAt:     now,
	}
	s.nextOrderID++
	s.orders = append(s.orders, o)
	return o, nil
}

// Orders возвращает заявки пользователя.
func (s *Store) Orders(userID int64) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			res = append(res, o)
		}
	}
	return res
}

// AddReview сохраняет отзыв для модерации.
func (s *Store) AddReview(userID int64, r model.ReviewRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, Review{UserID: userID, ReviewRequest: r})
}

// Reviews возвращает все отзывы.
func (s *Store) Reviews() []Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Review(nil), s.reviews...)
}

// AddFeedback сохраняет сообщение обратной связи.
func (s *Store) AddFeedback(userID int64, f model.FeedbackRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbacks = append(s.feedbacks, Feedback{UserID: userID, FeedbackRequest: f, Status: "new"})
}

// Feedbacks возвращает все сообщения обратной связи.
func (s *Store) Feedbacks() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Feedback(nil), s.feedbacks...)
}

func (s *Store) findLocked(kind model.Kind, id int64) (model.CatalogItem, bool) {
	for _, item := range s.catalog {
		if item.Type == kind && item.ID == id {
			return item, true
		}
	}
	return model.CatalogItem{}, false
}
