package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"creditcoach/models"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type cartScenario struct {
	repo  *MemoryRepository
	store *Store
}

func (sc *cartScenario) emptyCart() error {
	sc.repo = NewMemoryRepository()
	sc.store = NewStore(context.Background(), Bind(sc.repo, "cart:bdd"), nil)
	return nil
}

func (sc *cartScenario) emptyCartWithFullStorage() error {
	if err := sc.emptyCart(); err != nil {
		return err
	}
	sc.repo.FailSaves = errors.New("quota exceeded")
	return nil
}

func (sc *cartScenario) addProduct(qty int, id, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	return sc.store.AddItem(context.Background(), models.Product{ID: id, Price: p}, qty)
}

func (sc *cartScenario) setQuantity(id string, qty int) error {
	sc.store.UpdateQuantity(context.Background(), id, qty)
	return nil
}

func (sc *cartScenario) removeProduct(id string) error {
	sc.store.RemoveItem(context.Background(), id)
	return nil
}

func (sc *cartScenario) reload() error {
	sc.store = NewStore(context.Background(), Bind(sc.repo, "cart:bdd"), nil)
	return nil
}

func (sc *cartScenario) lineCount(n int) error {
	if got := len(sc.store.Items()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (sc *cartScenario) quantityOf(id string, n int) error {
	for _, it := range sc.store.Items() {
		if it.ID == id {
			if it.Quantity != n {
				return fmt.Errorf("expected quantity %d for %s, got %d", n, id, it.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("product %s not in cart", id)
}

func (sc *cartScenario) itemCount(n int) error {
	if got := sc.store.ItemCount(); got != n {
		return fmt.Errorf("expected item count %d, got %d", n, got)
	}
	return nil
}

func (sc *cartScenario) total(want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if got := sc.store.Total(); !got.Equal(w) {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func initializeCartScenario(ctx *godog.ScenarioContext) {
	sc := &cartScenario{}

	ctx.Step(`^an empty cart$`, sc.emptyCart)
	ctx.Step(`^an empty cart whose storage is full$`, sc.emptyCartWithFullStorage)
	ctx.Step(`^I add (\d+) of product "([^"]*)" priced ([0-9.]+)$`, sc.addProduct)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, sc.setQuantity)
	ctx.Step(`^I remove product "([^"]*)"$`, sc.removeProduct)
	ctx.Step(`^the session is reloaded from storage$`, sc.reload)
	ctx.Step(`^the cart has (\d+) lines?$`, sc.lineCount)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, sc.quantityOf)
	ctx.Step(`^the item count is (\d+)$`, sc.itemCount)
	ctx.Step(`^the total is "([^"]*)"$`, sc.total)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run cart feature tests")
	}
}
