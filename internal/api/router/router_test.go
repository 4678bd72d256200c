package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/kedr891/wishlist-tracker/internal/api/handler"
	"github.com/kedr891/wishlist-tracker/internal/coupon"
	"github.com/kedr891/wishlist-tracker/internal/notification"
	"github.com/kedr891/wishlist-tracker/internal/price"
	"github.com/kedr891/wishlist-tracker/internal/storage/memstore"
	"github.com/kedr891/wishlist-tracker/internal/wishlist"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

type APISuite struct {
	suite.Suite
	engine *gin.Engine
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	store := memstore.New()

	notifications := notification.NewService(store, nil, log)
	prices := price.NewService(store, nil, notifications, log)
	coupons := coupon.NewService(store, notifications, log)
	items := wishlist.NewService(store, prices, log)

	s.engine = gin.New()
	SetupRoutes(s.engine, Handlers{
		User:         handler.NewUserHandler(items, log),
		Item:         handler.NewItemHandler(items, log),
		Price:        handler.NewPriceHandler(prices, log),
		Coupon:       handler.NewCouponHandler(coupons, log),
		Notification: handler.NewNotificationHandler(notifications, log),
		Health:       handler.NewHealthHandler(store, "wishlist-tracker", "test"),
	}, false)
}

func (s *APISuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, dest interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest))
}

func (s *APISuite) createUser(name string) string {
	w := s.do(http.MethodPost, "/api/v1/users", map[string]string{
		"username": name,
		"email":    name + "@example.com",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var user struct {
		ID string `json:"id"`
	}
	s.decode(w, &user)
	return user.ID
}

func (s *APISuite) createItem(userID, name, price string) string {
	w := s.do(http.MethodPost, "/api/v1/users/"+userID+"/items", map[string]string{
		"name":  name,
		"price": price,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var item struct {
		ID string `json:"id"`
	}
	s.decode(w, &item)
	return item.ID
}

func (s *APISuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok","service":"wishlist-tracker","version":"test"}`, w.Body.String())
}

func (s *APISuite) TestPriceDropFlow() {
	userID := s.createUser("frank")
	itemID := s.createItem(userID, "Laptop", "100")

	w := s.do(http.MethodPut, "/api/v1/prices/"+itemID, map[string]string{"price": "90"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var update struct {
		Item struct {
			CurrentPrice string `json:"current_price"`
			LowestPrice  string `json:"lowest_price"`
			HighestPrice string `json:"highest_price"`
		} `json:"item"`
		Observation  *struct{} `json:"observation"`
		Notification *struct {
			ID      string `json:"id"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"notification"`
	}
	s.decode(w, &update)
	s.Equal("90", update.Item.CurrentPrice)
	s.Equal("90", update.Item.LowestPrice)
	s.Equal("100", update.Item.HighestPrice)
	s.NotNil(update.Observation)
	s.Require().NotNil(update.Notification)
	s.Equal("price_drop", update.Notification.Kind)
	s.Equal("Price dropped by 10.00% on Laptop", update.Notification.Message)
	notificationID := update.Notification.ID

	w = s.do(http.MethodPut, "/api/v1/prices/"+itemID, map[string]string{"price": "90"})
	s.Require().Equal(http.StatusOK, w.Code)
	update.Observation = nil
	update.Notification = nil
	s.decode(w, &update)
	s.Nil(update.Observation)
	s.Nil(update.Notification)

	w = s.do(http.MethodGet, "/api/v1/prices/"+itemID+"/history", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var history []struct {
		Price string `json:"price"`
	}
	s.decode(w, &history)
	s.Require().Len(history, 2)
	s.Equal("90", history[0].Price)
	s.Equal("100", history[1].Price)

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/notifications", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Notifications []struct {
			ItemName string `json:"item_name"`
			IsRead   bool   `json:"is_read"`
		} `json:"notifications"`
		Total       int `json:"total"`
		UnreadCount int `json:"unread_count"`
	}
	s.decode(w, &list)
	s.Equal(1, list.Total)
	s.Equal(1, list.UnreadCount)
	s.Equal("Laptop", list.Notifications[0].ItemName)

	w = s.do(http.MethodPost, "/api/v1/notifications/"+notificationID+"/read", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var read struct {
		IsRead bool    `json:"is_read"`
		ReadAt *string `json:"read_at"`
	}
	s.decode(w, &read)
	s.True(read.IsRead)
	s.NotNil(read.ReadAt)

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/price-drops", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var drops []struct {
		DropPercentage string `json:"drop_percentage"`
		HasPriceDrop   bool   `json:"has_price_drop"`
	}
	s.decode(w, &drops)
	s.Require().Len(drops, 1)
	s.Equal("10", drops[0].DropPercentage)
	s.True(drops[0].HasPriceDrop)
}

func (s *APISuite) TestCouponFlow() {
	userID := s.createUser("gina")
	itemID := s.createItem(userID, "Blender", "60")

	w := s.do(http.MethodPost, "/api/v1/items/"+itemID+"/coupons", map[string]interface{}{
		"code":            "SAVE10",
		"discount_amount": 10,
		"is_percentage":   true,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Coupon struct {
			ID     string `json:"id"`
			Code   string `json:"code"`
			Status string `json:"status"`
		} `json:"coupon"`
		Notification struct {
			Message string `json:"message"`
			ItemID  string `json:"item_id"`
		} `json:"notification"`
	}
	s.decode(w, &created)
	s.Equal("SAVE10", created.Coupon.Code)
	s.Equal("active", created.Coupon.Status)
	s.Equal("New coupon available for Blender: SAVE10", created.Notification.Message)
	s.Equal(itemID, created.Notification.ItemID)

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/notifications?kind=coupon&unread_only=true", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
	}
	s.decode(w, &list)
	s.Equal(1, list.Total)

	w = s.do(http.MethodPatch, "/api/v1/coupons/"+created.Coupon.ID, map[string]string{"status": "used"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/items/"+itemID+"/coupons?active_only=true", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var active []struct{}
	s.decode(w, &active)
	s.Empty(active)

	w = s.do(http.MethodPost, "/api/v1/items/"+itemID+"/coupons/simulate", nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/coupons", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var all []struct{}
	s.decode(w, &all)
	s.Len(all, 2)

	w = s.do(http.MethodPost, "/api/v1/users/"+userID+"/notifications/read-all", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"updated":2}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/v1/coupons/"+created.Coupon.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *APISuite) TestSimulateDrop_DefaultPercentage() {
	userID := s.createUser("iris")

	tests := []struct {
		name string
		body interface{}
		want string
	}{
		{name: "no body", body: nil, want: "90"},
		{name: "no percentage", body: map[string]string{}, want: "81"},
		{name: "explicit percentage", body: map[string]int{"percentage": 50}, want: "40.5"},
	}

	itemID := s.createItem(userID, "Blender", "100")
	for _, tt := range tests {
		w := s.do(http.MethodPost, "/api/v1/prices/"+itemID+"/simulate-drop", tt.body)
		s.Require().Equal(http.StatusOK, w.Code, tt.name+": "+w.Body.String())

		var update struct {
			Item struct {
				CurrentPrice string `json:"current_price"`
			} `json:"item"`
		}
		s.decode(w, &update)
		s.Equal(tt.want, update.Item.CurrentPrice, tt.name)
	}
}

func (s *APISuite) TestItemLifecycle() {
	userID := s.createUser("hank")
	itemID := s.createItem(userID, "Bike", "300")

	w := s.do(http.MethodPatch, "/api/v1/items/"+itemID, map[string]interface{}{
		"category":     "sport",
		"priority":     "high",
		"is_purchased": true,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/items?priority=high&is_purchased=true&category=sport", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var items []struct {
		ID       string `json:"id"`
		Priority string `json:"priority"`
	}
	s.decode(w, &items)
	s.Require().Len(items, 1)
	s.Equal("high", items[0].Priority)

	w = s.do(http.MethodPost, "/api/v1/prices/"+itemID+"/simulate-drop", map[string]int{"percentage": 20})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/items/"+itemID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail struct {
		Item struct {
			CurrentPrice string `json:"current_price"`
		} `json:"item"`
		PriceHistory []struct{} `json:"price_history"`
	}
	s.decode(w, &detail)
	s.Equal("240", detail.Item.CurrentPrice)
	s.Len(detail.PriceHistory, 2)

	w = s.do(http.MethodDelete, "/api/v1/items/"+itemID, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/items/"+itemID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/notifications", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Notifications []struct {
			ItemName string `json:"item_name"`
		} `json:"notifications"`
	}
	s.decode(w, &list)
	s.Require().Len(list.Notifications, 1)
	s.Empty(list.Notifications[0].ItemName)
}

func (s *APISuite) TestErrors() {
	userID := s.createUser("ivy")
	itemID := s.createItem(userID, "Lamp", "20")

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{name: "bad uuid", method: http.MethodGet, path: "/api/v1/items/nope", wantStatus: http.StatusBadRequest},
		{name: "unknown user", method: http.MethodGet, path: "/api/v1/users/00000000-0000-0000-0000-000000000001", wantStatus: http.StatusNotFound},
		{name: "negative price", method: http.MethodPut, path: "/api/v1/prices/" + itemID, body: map[string]string{"price": "-5"}, wantStatus: http.StatusBadRequest},
		{name: "missing price", method: http.MethodPut, path: "/api/v1/prices/" + itemID, body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "bad email", method: http.MethodPost, path: "/api/v1/users", body: map[string]string{"username": "joe", "email": "nope"}, wantStatus: http.StatusBadRequest},
		{name: "duplicate user", method: http.MethodPost, path: "/api/v1/users", body: map[string]string{"username": "ivy", "email": "ivy@example.com"}, wantStatus: http.StatusConflict},
		{name: "bad priority filter", method: http.MethodGet, path: "/api/v1/users/" + userID + "/items?priority=urgent", wantStatus: http.StatusBadRequest},
		{name: "percentage out of range", method: http.MethodPost, path: "/api/v1/prices/" + itemID + "/simulate-drop", body: map[string]int{"percentage": 150}, wantStatus: http.StatusBadRequest},
		{name: "coupon without code", method: http.MethodPost, path: "/api/v1/items/" + itemID + "/coupons", body: map[string]int{"discount_amount": 5}, wantStatus: http.StatusBadRequest},
		{name: "unknown notification", method: http.MethodDelete, path: "/api/v1/notifications/00000000-0000-0000-0000-000000000002", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(tt.method, tt.path, tt.body)
			s.Equal(tt.wantStatus, w.Code, w.Body.String())
			s.Contains(w.Body.String(), `"error"`)
		})
	}
}

func (s *APISuite) TestSwaggerDoc() {
	w := s.do(http.MethodGet, "/swagger/doc.json", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	s.decode(w, &doc)

	s.Equal("Wishlist Tracker API", doc.Info.Title)
	s.Contains(doc.Paths, "/health")
	s.Contains(doc.Paths["/api/v1/prices/{item_id}/simulate-drop"], "post")
	s.Contains(doc.Paths["/api/v1/items/{item_id}"], "patch")
}

func (s *APISuite) TestSwaggerUI() {
	w := s.do(http.MethodGet, "/swagger/index.html", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "swagger")
}
