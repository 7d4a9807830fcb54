package calculator

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duesbook/internal/models"
)

func expense(amount string, givers, takers []models.Share) *models.Expense {
	return &models.Expense{Amount: d(amount), Givers: givers, Takers: takers}
}

func settlement(from, to, amount string) *models.Settlement {
	return &models.Settlement{FromID: from, ToID: to, Amount: d(amount)}
}

func sumNet(net map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range net {
		total = total.Add(v)
	}
	return total
}

func assertNet(t *testing.T, net map[string]decimal.Decimal, want map[string]string) {
	t.Helper()
	for id, w := range want {
		if !net[id].Equal(d(w)) {
			t.Errorf("net[%s] = %s, want %s", id, net[id], w)
		}
	}
}

func assertDues(t *testing.T, got []Due, want []Due) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d dues %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].From != want[i].From || got[i].To != want[i].To || !got[i].Amount.Equal(want[i].Amount) {
			t.Errorf("due %d = %s->%s %s, want %s->%s %s",
				i, got[i].From, got[i].To, got[i].Amount, want[i].From, want[i].To, want[i].Amount)
		}
	}
}

// threeWayDinner is A paying 300 shared equally by A, B and C.
func threeWayDinner() []*models.Expense {
	return []*models.Expense{
		expense("300",
			[]models.Share{share("A", "300")},
			[]models.Share{share("A", "100"), share("B", "100"), share("C", "100")},
		),
	}
}

func TestComputeNetPositions_ThreeWayDinner(t *testing.T) {
	net := ComputeNetPositions(threeWayDinner(), nil, nil)
	assertNet(t, net, map[string]string{"A": "200", "B": "-100", "C": "-100"})

	dues := ComputeDues(net)
	assertDues(t, dues, []Due{
		{From: "B", To: "A", Amount: d("100")},
		{From: "C", To: "A", Amount: d("100")},
	})
}

func TestComputeNetPositions_AfterSettlement(t *testing.T) {
	settlements := []*models.Settlement{settlement("B", "A", "100")}
	net := ComputeNetPositions(threeWayDinner(), settlements, nil)
	assertNet(t, net, map[string]string{"A": "100", "B": "0", "C": "-100"})

	dues := ComputeDues(net)
	assertDues(t, dues, []Due{{From: "C", To: "A", Amount: d("100")}})
}

func TestComputeNetPositions_Overpayment(t *testing.T) {
	// B pays A more than owed; the relationship flips instead of failing.
	settlements := []*models.Settlement{settlement("B", "A", "150")}
	net := ComputeNetPositions(threeWayDinner(), settlements, nil)
	assertNet(t, net, map[string]string{"A": "50", "B": "50", "C": "-100"})

	dues := ComputeDues(net)
	assertDues(t, dues, []Due{
		{From: "C", To: "A", Amount: d("50")},
		{From: "C", To: "B", Amount: d("50")},
	})
}

func TestComputeNetPositions_CarryForward(t *testing.T) {
	carry := map[string]decimal.Decimal{"B": d("-40"), "C": d("40")}
	net := ComputeNetPositions(threeWayDinner(), nil, carry)
	assertNet(t, net, map[string]string{"A": "200", "B": "-140", "C": "-60"})
	if !sumNet(net).IsZero() {
		t.Errorf("nets sum to %s, want 0", sumNet(net))
	}
}

func TestComputeNetPositions_MultiplePayers(t *testing.T) {
	// A and B split the payment of 90; C consumed two thirds.
	expenses := []*models.Expense{
		expense("90",
			[]models.Share{share("A", "60"), share("B", "30")},
			[]models.Share{share("B", "30"), share("C", "60")},
		),
	}
	positions := ComputePositions(expenses, nil, nil)
	if !positions["A"].Paid.Equal(d("60")) || !positions["A"].Consumed.IsZero() {
		t.Errorf("A position = %+v", positions["A"])
	}
	if !positions["B"].Paid.Equal(d("30")) || !positions["B"].Consumed.Equal(d("30")) {
		t.Errorf("B position = %+v", positions["B"])
	}
	assertNet(t, NetOf(positions), map[string]string{"A": "60", "B": "0", "C": "-60"})
}

func TestComputeDues_TieBreakIsDeterministic(t *testing.T) {
	net := map[string]decimal.Decimal{
		"dave":  d("-50"),
		"bob":   d("-50"),
		"carol": d("50"),
		"alice": d("50"),
	}
	want := []Due{
		{From: "bob", To: "alice", Amount: d("50")},
		{From: "dave", To: "carol", Amount: d("50")},
	}
	for i := 0; i < 20; i++ {
		assertDues(t, ComputeDues(net), want)
	}
}

func TestComputeDues_IgnoresSubCentNoise(t *testing.T) {
	net := map[string]decimal.Decimal{"A": d("0.004"), "B": d("-0.004")}
	if dues := ComputeDues(net); len(dues) != 0 {
		t.Errorf("expected no dues, got %v", dues)
	}
}

func TestComputeDues_Empty(t *testing.T) {
	dues := ComputeDues(nil)
	if dues == nil || len(dues) != 0 {
		t.Errorf("expected empty non-nil dues, got %#v", dues)
	}
}

// randomLedger builds n people with random two-decimal expenses. Every
// expense goes through ApplySplit; about a third are nudged one cent off their
// total first and must be rejected. It returns the accepted expenses, some
// settlements, and how many nudged expenses were turned away.
func randomLedger(t *testing.T, r *rand.Rand, people, count int) ([]*models.Expense, []*models.Settlement, int) {
	t.Helper()
	ids := make([]string, people)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i)
	}
	pick := func() []string {
		var out []string
		for _, id := range ids {
			if r.Intn(2) == 0 {
				out = append(out, id)
			}
		}
		if len(out) == 0 {
			out = append(out, ids[r.Intn(people)])
		}
		return out
	}
	cent := decimal.New(1, -2)

	var expenses []*models.Expense
	rejected := 0
	for i := 0; i < count; i++ {
		total := decimal.New(int64(r.Intn(100000)+1), -2)
		givers, err := SplitEqually(total, pick())
		if err != nil {
			t.Fatalf("SplitEqually(givers) failed: %v", err)
		}
		e := &models.Expense{
			Date:     time.Date(2026, 3, 1+r.Intn(28), 0, 0, 0, 0, time.UTC),
			Amount:   total,
			Category: models.CategoryOthers,
			Givers:   givers,
		}

		nudged := false
		switch r.Intn(3) {
		case 0:
			e.SplitType = models.SplitEqual
			for _, id := range pick() {
				e.Takers = append(e.Takers, models.Share{PersonID: id})
			}
		case 1:
			e.SplitType = models.SplitCustom
			if e.Takers, err = SplitEqually(total, pick()); err != nil {
				t.Fatalf("SplitEqually(takers) failed: %v", err)
			}
		default:
			e.SplitType = models.SplitCustom
			if e.Takers, err = SplitEqually(total, pick()); err != nil {
				t.Fatalf("SplitEqually(takers) failed: %v", err)
			}
			side := e.Takers
			if r.Intn(2) == 0 {
				side = e.Givers
			}
			if r.Intn(2) == 0 && side[0].Amount.GreaterThanOrEqual(cent) {
				side[0].Amount = side[0].Amount.Sub(cent)
			} else {
				side[0].Amount = side[0].Amount.Add(cent)
			}
			nudged = true
		}

		err = ApplySplit(e)
		switch {
		case nudged && err == nil:
			t.Fatalf("expense %d: split one cent off its total was accepted", i)
		case nudged:
			rejected++
		case err != nil:
			t.Fatalf("expense %d: ApplySplit rejected a balanced split: %v", i, err)
		default:
			expenses = append(expenses, e)
		}
	}

	var settlements []*models.Settlement
	for i := 0; i < count/3; i++ {
		from, to := ids[r.Intn(people)], ids[r.Intn(people)]
		if ValidateSettlement(from, to, decimal.New(1, 0)) != nil {
			continue
		}
		settlements = append(settlements, &models.Settlement{
			FromID: from, ToID: to, Amount: decimal.New(int64(r.Intn(5000)+1), -2),
		})
	}
	return expenses, settlements, rejected
}

func TestConservationAndMinimality(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	totalRejected := 0
	for round := 0; round < 50; round++ {
		people := r.Intn(8) + 2
		expenses, settlements, rejected := randomLedger(t, r, people, r.Intn(30)+1)
		totalRejected += rejected

		net := ComputeNetPositions(expenses, settlements, nil)
		if sum := sumNet(net); !sum.IsZero() {
			t.Fatalf("round %d: nets sum to %s, want exactly 0", round, sum)
		}

		nonZero := 0
		for _, v := range net {
			if !isZero(v) {
				nonZero++
			}
		}
		dues := ComputeDues(net)
		if nonZero > 0 && len(dues) > nonZero-1 {
			t.Fatalf("round %d: %d dues for %d unsettled people", round, len(dues), nonZero)
		}

		// Paying every due as a settlement zeroes every position.
		for _, due := range dues {
			settlements = append(settlements, &models.Settlement{FromID: due.From, ToID: due.To, Amount: due.Amount})
		}
		after := ComputeNetPositions(expenses, settlements, nil)
		if sum := sumNet(after); !sum.IsZero() {
			t.Fatalf("round %d: nets sum to %s after paying dues", round, sum)
		}
		for id, v := range after {
			if !isZero(v) {
				t.Fatalf("round %d: %s still has net %s after paying dues", round, id, v)
			}
		}
	}
	if totalRejected == 0 {
		t.Fatal("no off-by-one-cent split was generated")
	}
}

func TestConservation_RepeatedOneCentDrift(t *testing.T) {
	var accepted []*models.Expense
	for i := 0; i < 5; i++ {
		e := &models.Expense{
			Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Amount:    d("10.00"),
			Category:  models.CategoryFood,
			SplitType: models.SplitCustom,
			Givers:    []models.Share{share("A", "10.00")},
			Takers:    []models.Share{share("A", "4.99"), share("B", "5.00")},
		}
		err := ValidateExpense(e)
		if err == nil {
			accepted = append(accepted, e)
			continue
		}
		var ve *models.ValidationError
		if !errors.As(err, &ve) || ve.Field != "takers" {
			t.Errorf("expected takers ValidationError, got %v", err)
		}
	}

	if len(accepted) > 0 {
		net := ComputeNetPositions(accepted, nil, nil)
		t.Fatalf("accepted %d drifting expenses, nets sum to %s", len(accepted), sumNet(net))
	}
}

func TestComputeStats(t *testing.T) {
	settlements := []*models.Settlement{settlement("B", "A", "100")}
	positions := ComputePositions(threeWayDinner(), settlements, nil)
	dues := ComputeDues(NetOf(positions))
	stats := ComputeStats([]string{"C", "B", "A", "D"}, positions, dues)

	if len(stats) != 4 {
		t.Fatalf("got %d stats, want 4", len(stats))
	}
	order := []string{"C", "B", "A", "D"}
	for i, id := range order {
		if stats[i].PersonID != id {
			t.Errorf("stats[%d] = %s, want %s", i, stats[i].PersonID, id)
		}
	}

	a, b, c, dd := stats[2], stats[1], stats[0], stats[3]
	if !a.Paid.Equal(d("300")) || !a.Consumed.Equal(d("100")) || !a.Owed.Equal(d("100")) || !a.Net.Equal(d("100")) {
		t.Errorf("A stats = %+v", a)
	}
	if !a.SettledReceived.Equal(d("100")) || !a.SettledAmount.Equal(d("-100")) {
		t.Errorf("A settled = %+v", a)
	}
	if !b.SettledAmount.Equal(d("100")) || !b.Net.IsZero() || !b.Owes.IsZero() {
		t.Errorf("B stats = %+v", b)
	}
	if !c.Owes.Equal(d("100")) || !c.Net.Equal(d("-100")) {
		t.Errorf("C stats = %+v", c)
	}
	if !dd.Net.IsZero() || !dd.Paid.IsZero() {
		t.Errorf("D stats = %+v", dd)
	}
}
