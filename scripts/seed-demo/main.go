// seed-demo: fills a data directory with a few demo users, funds them, runs a
// contract call of every tier on every chain in parallel and prints a
// balance summary table.
//
// Run from the module root:
//
//	go run ./scripts/seed-demo [data-dir]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/sim"
)

// ── config ────────────────────────────────────────────────────────────────────

var users = []string{"alice", "bob", "carol"}

var deposit = decimal.NewFromInt(1000)

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	user    string
	wallet  string // short form
	balance decimal.Decimal
	gas     decimal.Decimal
	txs     int
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	dataDir := filepath.Join(os.TempDir(), "simchain-demo")
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}
	s := sim.New(sim.Options{DataDir: dataDir})

	actors := make([]sim.Actor, len(users))
	for i, u := range users {
		a, err := ensureUser(s, u)
		if err != nil {
			fail(err)
		}
		actors[i] = a
	}

	var g errgroup.Group
	for _, a := range actors {
		g.Go(func() error {
			if _, err := s.OnRamp(a, deposit); err != nil {
				return fmt.Errorf("%s: %w", a.User, err)
			}
			for _, c := range s.Chains().All() {
				on := a
				on.Chain = c.Name
				for _, level := range chain.Levels {
					if _, err := s.ContractCall(on, level); err != nil {
						return fmt.Errorf("%s on %s: %w", a.User, c.Name, err)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fail(err)
	}

	// Transfers touch two users' files, so they run one at a time.
	for i, a := range actors {
		to := actors[(i+1)%len(actors)]
		if _, err := s.Send(a, to.User, to.Wallet, decimal.NewFromInt(int64(10*(i+1)))); err != nil {
			fail(err)
		}
	}

	results := make([]result, 0, len(actors))
	for _, a := range actors {
		r, err := summarize(s, a)
		if err != nil {
			fail(err)
		}
		results = append(results, r)
	}
	printTable(results)
	fmt.Printf("\nData written to %s\n", dataDir)
}

func ensureUser(s *sim.Simulator, name string) (sim.Actor, error) {
	if !s.Users().Exists(name) {
		if _, err := s.Users().Create(name); err != nil {
			return sim.Actor{}, err
		}
	}
	ws, err := s.Wallets().List(name)
	if err != nil {
		return sim.Actor{}, err
	}
	if len(ws) > 0 {
		return sim.Actor{User: name, Wallet: ws[0].Address}, nil
	}
	w, err := s.Wallets().Create(name, "demo")
	if err != nil {
		return sim.Actor{}, err
	}
	return sim.Actor{User: name, Wallet: w.Address}, nil
}

func summarize(s *sim.Simulator, a sim.Actor) (result, error) {
	bal, err := s.Balances().Get(a.User, a.Wallet)
	if err != nil {
		return result{}, err
	}
	rs, err := s.Ledger().Load(a.User)
	if err != nil {
		return result{}, err
	}
	mine := ledger.ForWallet(rs, a.Wallet)
	gas := decimal.Zero
	for _, r := range mine {
		gas = gas.Add(r.Base().GasFee)
	}
	return result{user: a.User, wallet: shortAddr(a.Wallet), balance: bal, gas: gas, txs: len(mine)}, nil
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool { return results[i].user < results[j].user })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "USER\tWALLET\tBALANCE\tGAS PAID\tTXS")
	fmt.Fprintln(w, strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 12)+"\t"+
		strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 4))

	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			r.user, r.wallet, r.balance.StringFixed(2), r.gas.StringFixed(2), r.txs)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "seed-demo:", err)
	os.Exit(1)
}
