package integration

import (
	"context"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/service/analytics"
	"github.com/saraelainee/1023B-backend-novo/internal/service/auth"
	"github.com/saraelainee/1023B-backend-novo/internal/service/cart"
	"github.com/saraelainee/1023B-backend-novo/internal/service/user"
	"github.com/saraelainee/1023B-backend-novo/internal/storage/memory"
)

// CartLifecycleTestSuite прогоняет полный пользовательский путь:
// регистрация, вход, наполнение корзины, сверка цен, аналитика, очистка.
type CartLifecycleTestSuite struct {
	suite.Suite
	catalog   domain.ProductRepository
	outbox    domain.OutboxRepository
	gate      auth.Service
	users     user.Service
	carts     cart.Service
	analytics analytics.Service
}

func (suite *CartLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	cartStore := memory.NewCartStore()
	suite.catalog = memory.NewProductRepository()
	userRepo := memory.NewUserRepository()
	suite.outbox = memory.NewOutboxRepository()

	suite.gate = auth.NewService("integration-secret", logger)
	suite.users = user.NewServiceWithoutMetrics(userRepo, logger)
	suite.carts = cart.NewServiceWithoutMetrics(cartStore, suite.catalog, suite.outbox, logger)
	suite.analytics = analytics.NewServiceWithoutMetrics(cartStore, cartStore, userRepo, suite.catalog, logger)

	seed := []domain.Product{
		{ID: "p1", Name: "Клавиатура", Category: "периферия", PriceMinor: 1000},
		{ID: "p2", Name: "Мышь", Category: "периферия", PriceMinor: 500},
		{ID: "p3", Name: "Стол", Category: "мебель", PriceMinor: 9000},
	}
	for _, product := range seed {
		suite.Require().NoError(suite.catalog.Insert(product))
	}
}

func (suite *CartLifecycleTestSuite) registerAndAuthenticate(email string) (domain.User, auth.Identity) {
	ctx := context.Background()

	account, err := suite.users.Register(ctx, user.RegisterInput{
		Name:     "Анна",
		Age:      30,
		Email:    email,
		Password: "secret-1",
	})
	suite.Require().NoError(err)

	loggedIn, err := suite.users.Login(ctx, email, "secret-1")
	suite.Require().NoError(err)
	suite.Require().Equal(account.ID, loggedIn.ID)

	token, err := suite.gate.IssueToken(loggedIn)
	suite.Require().NoError(err)

	identity, err := suite.gate.Authenticate("Bearer " + token)
	suite.Require().NoError(err)
	suite.Require().Equal(account.ID, identity.UserID)

	return account, identity
}

func (suite *CartLifecycleTestSuite) TestFullLifecycle() {
	ctx := context.Background()
	_, identity := suite.registerAndAuthenticate("anna@example.com")

	// Наполняем корзину.
	_, err := suite.carts.AddItem(ctx, identity.UserID, "p1", 2)
	suite.Require().NoError(err)
	updated, err := suite.carts.AddItem(ctx, identity.UserID, "p2", 1)
	suite.Require().NoError(err)
	suite.Equal(int64(2500), updated.TotalMinor)

	// Цена p1 меняется в каталоге после добавления.
	suite.Require().NoError(suite.catalog.Update(domain.Product{
		ID: "p1", Name: "Клавиатура", Category: "периферия", PriceMinor: 1200,
	}))

	view, err := suite.carts.View(ctx, identity.UserID, domain.ItemFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(view.Items, 2)

	var keyboard domain.ReconciledItem
	for _, item := range view.Items {
		if item.ProductID == "p1" {
			keyboard = item
		}
	}
	suite.True(keyboard.PriceChanged)
	suite.Equal(int64(1000), keyboard.UnitPriceMinor)
	suite.Equal(int64(1200), keyboard.EffectivePriceMinor)
	suite.Equal(int64(2900), view.TotalMinor) // 2*1200 + 500

	// Аналитика видит актуальный пересчитанный итог.
	report, err := suite.analytics.ComputeAnalytics(ctx)
	suite.Require().NoError(err)
	suite.Equal(1, report.ActiveUserCount)
	suite.Equal([]string{identity.UserID}, report.ActiveUserIDs)
	suite.Require().Len(report.TopUsers, 1)
	suite.Equal("anna@example.com", report.TopUsers[0].Email)

	// Очистка корзины.
	suite.Require().NoError(suite.carts.Clear(ctx, identity.UserID))
	_, err = suite.carts.View(ctx, identity.UserID, domain.ItemFilter{})
	suite.Require().ErrorIs(err, domain.ErrCartNotFound)

	report, err = suite.analytics.ComputeAnalytics(ctx)
	suite.Require().NoError(err)
	suite.Equal(0, report.ActiveUserCount)
}

func (suite *CartLifecycleTestSuite) TestUnavailableProductContributesZero() {
	ctx := context.Background()
	_, identity := suite.registerAndAuthenticate("anna@example.com")

	_, err := suite.carts.AddItem(ctx, identity.UserID, "p1", 1)
	suite.Require().NoError(err)
	_, err = suite.carts.AddItem(ctx, identity.UserID, "p3", 1)
	suite.Require().NoError(err)

	// Товар удаляется из каталога, но остаётся в корзине.
	suite.Require().NoError(suite.catalog.Delete("p3"))

	view, err := suite.carts.View(ctx, identity.UserID, domain.ItemFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(view.Items, 2)
	suite.Equal(int64(1000), view.TotalMinor)

	for _, item := range view.Items {
		if item.ProductID == "p3" {
			suite.True(item.Unavailable)
			suite.Equal(int64(0), item.EffectivePriceMinor)
		}
	}
}

func (suite *CartLifecycleTestSuite) TestAuthorizationGateBlocksUserFromAdmin() {
	account, identity := suite.registerAndAuthenticate("anna@example.com")
	suite.Equal(domain.RoleUser, account.Role)

	suite.Require().ErrorIs(
		suite.gate.Authorize(identity, domain.RoleAdmin),
		domain.ErrForbidden,
	)
	suite.Require().NoError(suite.gate.Authorize(identity, domain.RoleUser, domain.RoleAdmin))
}

func (suite *CartLifecycleTestSuite) TestMutationsLandInOutbox() {
	ctx := context.Background()
	_, identity := suite.registerAndAuthenticate("anna@example.com")

	_, err := suite.carts.AddItem(ctx, identity.UserID, "p1", 2)
	suite.Require().NoError(err)
	_, err = suite.carts.UpdateQuantity(ctx, identity.UserID, "p1", 5)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.carts.Clear(ctx, identity.UserID))

	pending, err := suite.outbox.PullPending(10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 3)

	types := make([]string, 0, len(pending))
	for _, msg := range pending {
		types = append(types, msg.EventType)

		var payload map[string]any
		suite.Require().NoError(json.Unmarshal(msg.Payload, &payload))
		suite.Equal(identity.UserID, payload["owner_id"])
	}
	suite.Equal([]string{"cart.item_added", "cart.item_quantity_changed", "cart.cleared"}, types)
}

func TestCartLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(CartLifecycleTestSuite))
}
