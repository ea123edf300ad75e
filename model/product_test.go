package models

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestProduct(t *testing.T) {
	t.Run("NewProduct_ValidatesArguments", func(t *testing.T) {
		_, err := NewProduct("", dec(249), 200)
		require.True(t, IsInvalidArgument(err))

		_, err = NewProduct("Airpods Pro 2", dec(-249), 200)
		require.True(t, IsInvalidArgument(err))

		_, err = NewProduct("Airpods Pro 2", dec(249), -1)
		require.True(t, IsInvalidArgument(err))

		_, err = NewCappedProduct("Shipping", dec(10), 5, 0)
		require.True(t, IsInvalidArgument(err))
	})

	t.Run("NewProduct_DerivesActiveFromQuantity", func(t *testing.T) {
		p, err := NewProduct("Airpods Pro 2", dec(249), 200)
		require.NoError(t, err)
		require.True(t, p.IsActive())
		require.Equal(t, DefaultPromotion, p.Promotion())

		empty, err := NewProduct("Empty", dec(1), 0)
		require.NoError(t, err)
		require.False(t, empty.IsActive())
	})

	t.Run("Buy_DecrementsStockAndReturnsRawValue", func(t *testing.T) {
		p, _ := NewProduct("Airpods Pro 2", dec(249), 200)
		total, err := p.Buy(150)
		require.NoError(t, err)
		require.True(t, total.Equal(dec(249*150)))
		require.Equal(t, 50, p.Quantity())
	})

	t.Run("Buy_IgnoresPromotion", func(t *testing.T) {
		promo, _ := NewPercentDiscount("20% off", 20)
		p, _ := NewProduct("Bose", dec(250), 500, WithPromotion(promo))
		total, err := p.Buy(50)
		require.NoError(t, err)
		require.True(t, total.Equal(dec(12500)))
	})

	t.Run("Buy_ExactStockDeactivates", func(t *testing.T) {
		p, _ := NewProduct("MacBook Air M2", dec(1450), 100)
		total, err := p.Buy(100)
		require.NoError(t, err)
		require.True(t, total.Equal(dec(145000)))
		require.Equal(t, 0, p.Quantity())
		require.False(t, p.IsActive())
	})

	t.Run("Buy_ZeroIsANoop", func(t *testing.T) {
		p, _ := NewProduct("Widget", dec(10), 5)
		total, err := p.Buy(0)
		require.NoError(t, err)
		require.True(t, total.IsZero())
		require.Equal(t, 5, p.Quantity())
	})

	t.Run("Buy_OverStockFailsWithoutChange", func(t *testing.T) {
		p, _ := NewProduct("Airpods Pro 2", dec(249), 200)
		_, err := p.Buy(250)
		require.True(t, IsOutOfStock(err))

		var cmdErr *CommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "Airpods Pro 2", cmdErr.Product)
		require.Equal(t, 200, cmdErr.Available)
		require.Equal(t, 250, cmdErr.Requested)

		require.Equal(t, 200, p.Quantity())
		require.True(t, p.IsActive())
	})

	t.Run("Buy_NegativeQuantityIsInvalid", func(t *testing.T) {
		p, _ := NewProduct("Widget", dec(10), 5)
		_, err := p.Buy(-1)
		require.True(t, IsInvalidArgument(err))
		require.Equal(t, 5, p.Quantity())
	})

	t.Run("SetQuantity_ReactivatesAndDeactivates", func(t *testing.T) {
		p, _ := NewProduct("Widget", dec(10), 1)
		_, err := p.Buy(1)
		require.NoError(t, err)
		require.False(t, p.IsActive())

		require.NoError(t, p.SetQuantity(3))
		require.True(t, p.IsActive())
		require.Equal(t, 3, p.Quantity())

		require.NoError(t, p.SetQuantity(0))
		require.False(t, p.IsActive())

		require.True(t, IsInvalidArgument(p.SetQuantity(-2)))
		require.Equal(t, 0, p.Quantity())
	})

	t.Run("SetPrice_RejectsNegative", func(t *testing.T) {
		p, _ := NewProduct("Widget", dec(10), 1)
		require.True(t, IsInvalidArgument(p.SetPrice(dec(-1))))
		require.True(t, p.Price().Equal(dec(10)))
		require.NoError(t, p.SetPrice(decimal.RequireFromString("12.5")))
		require.Equal(t, "12.5", p.Price().String())
	})

	t.Run("SetPromotion_NilRestoresDefault", func(t *testing.T) {
		promo, _ := NewPercentDiscount("20% off", 20)
		p, _ := NewProduct("Widget", dec(10), 1, WithPromotion(promo))
		require.Equal(t, "20% off", p.Promotion().Name())
		p.SetPromotion(nil)
		require.Equal(t, DefaultPromotion, p.Promotion())
	})

	t.Run("Unlimited_NeverRunsOut", func(t *testing.T) {
		p, err := NewUnlimitedProduct("Windows License", dec(125))
		require.NoError(t, err)
		require.True(t, p.IsActive())
		require.True(t, p.IsUnlimited())

		total, err := p.Buy(1_000_000)
		require.NoError(t, err)
		require.True(t, total.Equal(dec(125_000_000)))
		require.Equal(t, Unlimited, p.Quantity())
		require.True(t, p.IsActive())

		require.True(t, IsInvalidArgument(p.SetQuantity(10)))
	})

	t.Run("Capped_ExposesMaximum", func(t *testing.T) {
		p, err := NewCappedProduct("Shipping", dec(10), 100, 1)
		require.NoError(t, err)
		maximum, ok := p.Maximum()
		require.True(t, ok)
		require.Equal(t, 1, maximum)
		require.Equal(t, KindCapped, p.Kind())

		// the product itself does not enforce the cap
		_, err = p.Buy(5)
		require.NoError(t, err)

		plain, _ := NewProduct("Widget", dec(10), 1)
		_, ok = plain.Maximum()
		require.False(t, ok)
	})

	t.Run("Purchase_AppliesPromotion", func(t *testing.T) {
		promo, _ := NewEveryXFree("Buy two, get one free", 3)
		p, _ := NewProduct("Gadget", dec(50), 10, WithPromotion(promo))
		total, applied, err := p.Purchase(6)
		require.NoError(t, err)
		require.True(t, total.Equal(dec(200)), total.String())
		require.Same(t, promo, applied)
		require.Equal(t, 4, p.Quantity())

		_, applied, err = p.Purchase(5)
		require.True(t, IsOutOfStock(err))
		require.Nil(t, applied)
		require.Equal(t, 4, p.Quantity())
	})

	t.Run("Purchase_ReportsPromotionThatPricedTheLine", func(t *testing.T) {
		twenty, _ := NewPercentDiscount("20% off", 20)
		half, _ := NewPercentDiscount("50% off", 50)
		p, _ := NewProduct("Widget", dec(100), 1000, WithPromotion(twenty))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if i%2 == 0 {
					p.SetPromotion(half)
				} else {
					p.SetPromotion(twenty)
				}
			}
		}()

		type result struct {
			total   decimal.Decimal
			applied Promotion
		}
		var results []result
		for i := 0; i < 200; i++ {
			total, applied, err := p.Purchase(1)
			require.NoError(t, err)
			results = append(results, result{total, applied})
		}
		wg.Wait()

		for _, r := range results {
			require.True(t, r.applied.Apply(dec(100), 1).Equal(r.total),
				"%s charged %s", r.applied.Name(), r.total)
		}
	})

	t.Run("SortByPrice_OrdersAscending", func(t *testing.T) {
		a, _ := NewProduct("A", dec(30), 1)
		b, _ := NewProduct("B", dec(10), 1)
		c, _ := NewProduct("C", dec(20), 1)
		ps := []*Product{a, b, c}
		SortByPrice(ps)
		require.Equal(t, []*Product{b, c, a}, ps)
		require.True(t, b.Less(a))
		require.False(t, a.Less(b))
	})

	t.Run("String_DescribesVariant", func(t *testing.T) {
		p, _ := NewProduct("MacBook Air M2", dec(1450), 100)
		require.Equal(t, "MacBook Air M2, Price: 1450, Quantity: 100, Promotion: No promotion", p.String())

		free, _ := NewPercentDiscount("Currently free!", 100)
		s, _ := NewCappedProduct("Shipping", dec(10), 5, 1, WithPromotion(free))
		require.Equal(t, "Shipping, Price: 10, Quantity: 5, Maximum: 1, Promotion: Currently free!", s.String())

		u, _ := NewUnlimitedProduct("Windows License", dec(125))
		require.Contains(t, u.String(), "Quantity: Unlimited")
	})

	t.Run("ParseKind", func(t *testing.T) {
		for _, k := range []Kind{KindStocked, KindUnlimited, KindCapped} {
			got, err := ParseKind(k.String())
			require.NoError(t, err)
			require.Equal(t, k, got)
		}
		_, err := ParseKind("bundle")
		require.True(t, IsInvalidArgument(err))
	})
}

func TestProductConcurrentBuy(t *testing.T) {
	t.Run("ExactStockSplitAcrossBuyers", func(t *testing.T) {
		p, _ := NewProduct("Widget", dec(10), 10)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, q := range []int{4, 6} {
			wg.Add(1)
			go func(q int) {
				defer wg.Done()
				_, err := p.Buy(q)
				errs <- err
			}(q)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		require.Equal(t, 0, p.Quantity())
		require.False(t, p.IsActive())
	})

	t.Run("NoOversell", func(t *testing.T) {
		const stock = 100
		p, _ := NewProduct("Widget", dec(1), stock)

		type attempt struct {
			quantity int
			err      error
		}
		var wg sync.WaitGroup
		attempts := make(chan attempt, 64)
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func(q int) {
				defer wg.Done()
				_, err := p.Buy(q)
				attempts <- attempt{q, err}
			}(i%7 + 1)
		}
		wg.Wait()
		close(attempts)

		sold := 0
		for a := range attempts {
			if a.err != nil {
				require.True(t, IsOutOfStock(a.err), a.err.Error())
				continue
			}
			sold += a.quantity
		}
		require.LessOrEqual(t, sold, stock)
		require.Equal(t, stock-sold, p.Quantity())
	})
}
