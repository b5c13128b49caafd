package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/ledger"
	"github.com/Mohsinsiddi/simchain/internal/nft"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

func (s *Server) listChains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Chains().All())
}

func (s *Server) chainFees(w http.ResponseWriter, r *http.Request) {
	c, err := s.sim.Chains().Lookup(chi.URLParam(r, "chain"))
	if err != nil {
		writeError(w, err)
		return
	}
	var out []feeResponse
	for _, f := range chain.FeeSchedule(c) {
		out = append(out, feeResponse{
			Level:      string(f.Level),
			Label:      f.Level.Label(),
			Multiplier: f.Multiplier,
			Fee:        f.Fee,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listCatalog(w http.ResponseWriter, _ *http.Request) {
	assets, err := s.sim.Catalog().Load()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := s.sim.Users().List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	name, err := s.sim.Users().Create(req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user": name})
}

func (s *Server) listAllWallets(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.sim.Wallets().ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	u := chi.URLParam(r, "user")
	if err := s.sim.Users().Require(u); err != nil {
		writeError(w, err)
		return
	}
	ws, err := s.sim.Wallets().List(u)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]walletResponse, 0, len(ws))
	for _, wl := range ws {
		out = append(out, walletResponse{Address: wl.Address, Nickname: wl.Nickname, CreatedAt: wl.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
	u := chi.URLParam(r, "user")
	var req createWalletRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.sim.Users().Require(u); err != nil {
		writeError(w, err)
		return
	}
	var (
		created *wallet.Wallet
		err     error
	)
	if req.PrivateKey != "" {
		created, err = s.sim.Wallets().Import(u, req.Nickname, req.PrivateKey)
	} else {
		created, err = s.sim.Wallets().Create(u, req.Nickname)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, walletResponse{
		Address:   created.Address,
		Nickname:  created.Nickname,
		CreatedAt: created.CreatedAt,
	})
}

func (s *Server) balances(w http.ResponseWriter, r *http.Request) {
	u := chi.URLParam(r, "user")
	if err := s.sim.Users().Require(u); err != nil {
		writeError(w, err)
		return
	}
	ws, err := s.sim.Wallets().List(u)
	if err != nil {
		writeError(w, err)
		return
	}
	all, err := s.sim.Balances().All(u)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]balanceResponse, 0, len(ws))
	for _, wl := range ws {
		out = append(out, balanceResponse{Address: wl.Address, Nickname: wl.Nickname, USDC: all[wl.Address]})
	}
	writeJSON(w, http.StatusOK, out)
}

// transactions returns the user's history newest first. Query parameters:
// wallet (address or nickname) and limit (0 for everything).
func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	u := chi.URLParam(r, "user")
	if err := s.sim.Users().Require(u); err != nil {
		writeError(w, err)
		return
	}
	rs, err := s.sim.Ledger().Load(u)
	if err != nil {
		writeError(w, err)
		return
	}
	if ref := r.URL.Query().Get("wallet"); ref != "" {
		wl, err := s.sim.Wallets().Resolve(u, ref)
		if err != nil {
			writeError(w, err)
			return
		}
		rs = ledger.ForWallet(rs, wl.Address)
	}
	limit := s.historyLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	out := ledger.Latest(rs, limit)
	if out == nil {
		out = ledger.Records{}
	}
	writeJSON(w, http.StatusOK, out)
}

// actor resolves the {user}/{wallet} path pair. The wallet segment may be
// an address, a nickname or an address prefix.
func (s *Server) actor(w http.ResponseWriter, r *http.Request, chainName string) (sim.Actor, bool) {
	u := chi.URLParam(r, "user")
	if err := s.sim.Users().Require(u); err != nil {
		writeError(w, err)
		return sim.Actor{}, false
	}
	wl, err := s.sim.Wallets().Resolve(u, chi.URLParam(r, "wallet"))
	if err != nil {
		writeError(w, err)
		return sim.Actor{}, false
	}
	return sim.Actor{User: u, Wallet: wl.Address, Chain: chainName}, true
}

// recipient resolves toWallet within toUser's wallets.
func (s *Server) recipient(w http.ResponseWriter, toUser, toWallet string) (string, bool) {
	if err := s.sim.Users().Require(toUser); err != nil {
		writeError(w, err)
		return "", false
	}
	wl, err := s.sim.Wallets().Resolve(toUser, toWallet)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return wl.Address, true
}

func (s *Server) onRamp(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	rec, err := s.sim.OnRamp(a, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger.Records{rec})
}

func (s *Server) offRamp(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	rec, err := s.sim.OffRamp(a, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger.Records{rec})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	to, ok := s.recipient(w, req.ToUser, req.ToWallet)
	if !ok {
		return
	}
	rec, err := s.sim.Send(a, req.ToUser, to, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger.Records{rec})
}

func (s *Server) contractCall(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	rec, err := s.sim.ContractCall(a, chain.ParseComplexity(req.Level))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger.Records{rec})
}

func (s *Server) mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	minted, _, err := s.sim.Mint(a, sim.MintRequest{AssetID: req.AssetID, Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, minted)
}

func (s *Server) transferNFT(w http.ResponseWriter, r *http.Request) {
	var req transferNFTRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	to, ok := s.recipient(w, req.ToUser, req.ToWallet)
	if !ok {
		return
	}
	moved, _, err := s.sim.TransferNFT(a, chi.URLParam(r, "token"), req.ToUser, to, req.BridgeTo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

func (s *Server) burn(w http.ResponseWriter, r *http.Request) {
	var req chainRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	rec, err := s.sim.Burn(a, chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Records{rec})
}

func (s *Server) listForSale(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, ok := s.actor(w, r, req.Chain)
	if !ok {
		return
	}
	l, err := s.sim.ListForSale(a, req.TokenID, req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// listNFTs returns every token, or those owned by ?user= (and ?wallet=).
func (s *Server) listNFTs(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("user")
	if u == "" {
		all, err := s.sim.NFTs().All()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(all))
		return
	}
	addr := ""
	if ref := r.URL.Query().Get("wallet"); ref != "" {
		wl, err := s.sim.Wallets().Resolve(u, ref)
		if err != nil {
			writeError(w, err)
			return
		}
		addr = wl.Address
	}
	owned, err := s.sim.NFTs().ListByOwner(u, addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(owned))
}

func nonNil(ns []nft.NFT) []nft.NFT {
	if ns == nil {
		return []nft.NFT{}
	}
	return ns
}

func (s *Server) getNFT(w http.ResponseWriter, r *http.Request) {
	n, err := s.sim.NFTs().Get(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// listMarket returns every listing, or those of ?user=.
func (s *Server) listMarket(w http.ResponseWriter, r *http.Request) {
	var (
		out any
		err error
	)
	if u := r.URL.Query().Get("user"); u != "" {
		out, err = s.sim.Market().ByUser(u)
	} else {
		out, err = s.sim.Market().All()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getListing(w http.ResponseWriter, r *http.Request) {
	l, ok, err := s.sim.Market().Get(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "listing not found"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// delist removes a listing on behalf of ?user=.
func (s *Server) delist(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("user")
	if u == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user query parameter is required"})
		return
	}
	removed, err := s.sim.Delist(sim.Actor{User: u}, chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}
