package nft_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MixinNetwork/muse/nft"
	"github.com/MixinNetwork/muse/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testURI = "https://stacktrace.top/imags/1.json"

var (
	ownerAddress = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	aliceAddress = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	bobAddress   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func testStore(t *testing.T) *store.BadgerStore {
	db, err := store.OpenBadger(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRegistry(t *testing.T, conf nft.Config) *nft.Registry {
	reg, err := nft.Deploy(testStore(t), ownerAddress, conf)
	require.NoError(t, err)
	t.Cleanup(reg.Close)
	return reg
}

func TestMintOneAndCheckAccount(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	ch := make(chan *nft.Transfer, 4)
	sub := reg.SubscribeTransfers(ch)
	defer sub.Unsubscribe()

	id, err := reg.MintOne(aliceAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(1), id)

	balance, err := reg.BalanceOf(aliceAddress)
	require.NoError(err)
	require.Equal(uint64(1), balance)
	balance, err = reg.BalanceOfToken(aliceAddress, id)
	require.NoError(err)
	require.Equal(uint64(1), balance)
	uri, err := reg.URI(id)
	require.NoError(err)
	require.Equal(testURI, uri)

	id, err = reg.MintOne(aliceAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(2), id)
	balance, err = reg.BalanceOf(aliceAddress)
	require.NoError(err)
	require.Equal(uint64(2), balance)

	<-ch
	evt := <-ch
	require.Equal(common.Address{}, evt.From)
	require.Equal(aliceAddress, evt.To)
	require.Equal(uint64(2), evt.Id)
	require.Equal(uint64(2), evt.Sequence)
	require.Equal(nft.TransferTopic, evt.Topic)
	require.Equal(reg.Id(), evt.Registry)
	require.Equal(nft.TransferTraceId(reg.Id(), 2), evt.TraceId)
}

func TestTransferTraceId(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	for i := 0; i < 3; i++ {
		_, err := reg.MintOne(aliceAddress, testURI)
		require.NoError(err)
	}
	evts, err := reg.Transfers(0, 0)
	require.NoError(err)
	require.Len(evts, 3)
	seen := make(map[string]bool)
	for _, evt := range evts {
		require.Equal(nft.TransferTraceId(reg.Id(), evt.Sequence), evt.TraceId)
		require.False(seen[evt.TraceId])
		seen[evt.TraceId] = true
	}

	other := testRegistry(t, nft.MusebotAiConfig())
	require.NotEqual(nft.TransferTraceId(reg.Id(), 1), nft.TransferTraceId(other.Id(), 1))
}

func TestConcurrentMints(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	callers := []common.Address{aliceAddress, bobAddress, ownerAddress}
	const count = 120
	ids := make(chan uint64, count)
	errs := make(chan error, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(caller common.Address) {
			defer wg.Done()
			id, err := reg.MintOne(caller, testURI)
			if err != nil {
				errs <- err
				return
			}
			ids <- id
		}(callers[i%len(callers)])
	}
	wg.Wait()
	close(ids)
	close(errs)
	for err := range errs {
		require.NoError(err)
	}

	unique := make(map[uint64]bool)
	for id := range ids {
		require.False(unique[id])
		unique[id] = true
	}
	require.Len(unique, count)
	require.Equal(uint64(count), reg.TotalSupply())

	evts, err := reg.Transfers(0, 0)
	require.NoError(err)
	require.Len(evts, count)
	var total uint64
	for i, evt := range evts {
		require.Equal(uint64(i+1), evt.Sequence)
		require.Equal(uint64(i+1), evt.Id)
		require.True(unique[evt.Id])
	}
	for _, caller := range callers {
		balance, err := reg.BalanceOf(caller)
		require.NoError(err)
		require.Equal(uint64(count/len(callers)), balance)
		total += balance
	}
	require.Equal(uint64(count), total)
}

func TestStalledSubscriberDoesNotBlockQueries(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	ch := make(chan *nft.Transfer)
	sub := reg.SubscribeTransfers(ch)
	defer sub.Unsubscribe()

	done := make(chan uint64, 1)
	go func() {
		id, err := reg.MintOne(aliceAddress, testURI)
		if err == nil {
			done <- id
		}
	}()

	require.Eventually(func() bool {
		return reg.NextTokenId() == 2 && reg.TotalSupply() == 1
	}, 5*time.Second, 10*time.Millisecond)
	balance, err := reg.BalanceOf(aliceAddress)
	require.NoError(err)
	require.Equal(uint64(1), balance)
	select {
	case <-done:
		require.Fail("mint returned before its record was delivered")
	default:
	}

	evt := <-ch
	require.Equal(uint64(1), evt.Id)
	select {
	case id := <-done:
		require.Equal(uint64(1), id)
	case <-time.After(5 * time.Second):
		require.Fail("mint did not return after delivery")
	}
}

func TestRegistryConstruction(t *testing.T) {
	require := require.New(t)
	db := testStore(t)

	_, err := nft.Open(db)
	require.ErrorIs(err, nft.ErrNotDeployed)

	reg, err := nft.Deploy(db, ownerAddress, nft.MuseMintConfig())
	require.NoError(err)
	require.Equal("MuseToken", reg.Name())
	require.Equal(ownerAddress, reg.Owner())
	require.Equal(uint64(0), reg.TotalSupply())

	_, err = nft.Deploy(db, aliceAddress, nft.MusebotAiConfig())
	require.ErrorIs(err, nft.ErrAlreadyDeployed)

	_, err = nft.Deploy(testStore(t), common.Address{}, nft.MusebotAiConfig())
	require.Error(err)

	id, err := reg.MintNamed(aliceAddress, "first", testURI)
	require.NoError(err)
	require.Equal(uint64(1), id)

	reopened, err := nft.Open(db)
	require.NoError(err)
	require.Equal(reg.Id(), reopened.Id())
	require.Equal(ownerAddress, reopened.Owner())
	require.Equal(nft.MuseMintConfig(), reopened.Config())
	require.Equal(uint64(2), reopened.NextTokenId())
	name, err := reopened.TokenName(1)
	require.NoError(err)
	require.Equal("first", name)

	id, err = reopened.MintNamed(bobAddress, "second", testURI)
	require.NoError(err)
	require.Equal(uint64(2), id)
}

func TestRequireOwner(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	require.NoError(reg.RequireOwner(ownerAddress))
	err := reg.RequireOwner(aliceAddress)
	require.ErrorIs(err, nft.ErrUnauthorized)
	require.True(errors.Is(err, nft.ErrUnauthorized))
}

func TestGuardedMintLeavesStateUnchanged(t *testing.T) {
	require := require.New(t)
	conf := nft.MusebotAiConfig()
	conf.Guarded = true
	reg := testRegistry(t, conf)

	_, err := reg.MintOne(aliceAddress, testURI)
	require.ErrorIs(err, nft.ErrUnauthorized)
	require.Equal(uint64(1), reg.NextTokenId())
	require.Equal(uint64(0), reg.TotalSupply())
	balance, err := reg.BalanceOf(aliceAddress)
	require.NoError(err)
	require.Equal(uint64(0), balance)
	evts, err := reg.Transfers(0, 0)
	require.NoError(err)
	require.Len(evts, 0)
	_, err = reg.TokenURI(1)
	require.ErrorIs(err, nft.ErrUnknownToken)

	id, err := reg.MintOne(ownerAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(1), id)
	require.Equal(ownerAddress, reg.Owner())
}

func TestUnknownToken(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	_, err := reg.TokenURI(1)
	require.ErrorIs(err, nft.ErrUnknownToken)
	_, err = reg.OwnerOf(7)
	require.ErrorIs(err, nft.ErrUnknownToken)
	_, err = reg.BalanceOfToken(aliceAddress, 1)
	require.ErrorIs(err, nft.ErrUnknownToken)

	id, err := reg.MintOne(aliceAddress, "")
	require.NoError(err)
	uri, err := reg.TokenURI(id)
	require.NoError(err)
	require.Equal("", uri)
}

func TestMintSequenceAcrossAccounts(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t, nft.MusebotAiConfig())

	callers := []common.Address{aliceAddress, bobAddress, aliceAddress, ownerAddress, bobAddress}
	uris := []string{"ipfs://a", "ipfs://b", "ipfs://c", " spaced uri ", "ipfs://e?x=1&y=2"}
	for i, caller := range callers {
		id, err := reg.MintOne(caller, uris[i])
		require.NoError(err)
		require.Equal(uint64(i+1), id)
	}
	require.Equal(uint64(5), reg.TotalSupply())

	for i, uri := range uris {
		got, err := reg.TokenURI(uint64(i + 1))
		require.NoError(err)
		require.Equal(uri, got)
	}

	expected := map[common.Address]uint64{aliceAddress: 2, bobAddress: 2, ownerAddress: 1}
	for account, count := range expected {
		balance, err := reg.BalanceOf(account)
		require.NoError(err)
		require.Equal(count, balance)
	}

	evts, err := reg.Transfers(0, 0)
	require.NoError(err)
	require.Len(evts, 5)
	for i, evt := range evts {
		require.Equal(uint64(i+1), evt.Sequence)
		require.Equal(uint64(i+1), evt.Id)
		require.Equal(callers[i], evt.To)
		require.Equal(callers[i], evt.Operator)
		require.Equal(common.Address{}, evt.From)
		require.Equal(uint64(1), evt.Value)
	}

	evts, err = reg.Transfers(3, 1)
	require.NoError(err)
	require.Len(evts, 1)
	require.Equal(uint64(4), evts[0].Id)

	toks, err := reg.TokensOf(aliceAddress, 0, 0)
	require.NoError(err)
	require.Len(toks, 2)
	require.Equal(uint64(1), toks[0].Id)
	require.Equal(uint64(3), toks[1].Id)
	toks, err = reg.TokensOf(aliceAddress, 2, 0)
	require.NoError(err)
	require.Len(toks, 1)
	require.Equal(uint64(3), toks[0].Id)
}

func TestNamedMint(t *testing.T) {
	require := require.New(t)

	bot := testRegistry(t, nft.MusebotAiConfig())
	_, err := bot.MintNamed(aliceAddress, "muse", testURI)
	require.ErrorIs(err, nft.ErrUnsupported)
	_, err = bot.Mint(aliceAddress, nft.MintParams{Name: "muse", URI: testURI})
	require.ErrorIs(err, nft.ErrUnsupported)
	require.Equal(uint64(1), bot.NextTokenId())

	reg := testRegistry(t, nft.MuseMintConfig())
	id, err := reg.MintNamed(aliceAddress, "muse #1", testURI)
	require.NoError(err)
	tok, err := reg.Token(id)
	require.NoError(err)
	require.Equal("muse #1", tok.Name)
	require.Equal(testURI, tok.URI)
	require.Equal(aliceAddress, tok.Minter)
	require.Equal(aliceAddress, tok.Holder)
	require.Equal("MuseToken", reg.Name())
}

func TestRecipientPolicy(t *testing.T) {
	require := require.New(t)

	open := testRegistry(t, nft.MusebotAiConfig())
	id, err := open.MintOneTo(aliceAddress, bobAddress, testURI)
	require.NoError(err)
	holder, err := open.OwnerOf(id)
	require.NoError(err)
	require.Equal(bobAddress, holder)
	balance, err := open.BalanceOf(aliceAddress)
	require.NoError(err)
	require.Equal(uint64(0), balance)
	balance, err = open.BalanceOfToken(bobAddress, id)
	require.NoError(err)
	require.Equal(uint64(1), balance)
	balance, err = open.BalanceOfToken(aliceAddress, id)
	require.NoError(err)
	require.Equal(uint64(0), balance)
	_, err = open.MintOneTo(aliceAddress, common.Address{}, testURI)
	require.ErrorIs(err, nft.ErrUnsupported)

	scoped := testRegistry(t, nft.MuseMintConfig())
	_, err = scoped.MintOneTo(aliceAddress, bobAddress, testURI)
	require.ErrorIs(err, nft.ErrUnauthorized)
	id, err = scoped.MintOneTo(aliceAddress, aliceAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(1), id)
	id, err = scoped.MintOneTo(ownerAddress, bobAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(2), id)

	conf := nft.MusebotAiConfig()
	conf.Recipient = nft.RecipientSelf
	self := testRegistry(t, conf)
	_, err = self.MintOneTo(ownerAddress, bobAddress, testURI)
	require.ErrorIs(err, nft.ErrUnsupported)
	require.Equal(uint64(0), self.TotalSupply())
}

func TestFirstTokenIdAndMaxSupply(t *testing.T) {
	require := require.New(t)

	conf := nft.MusebotAiConfig()
	conf.FirstTokenId = 0
	conf.MaxSupply = 2
	reg := testRegistry(t, conf)

	id, err := reg.MintOne(aliceAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(0), id)
	id, err = reg.MintOne(bobAddress, testURI)
	require.NoError(err)
	require.Equal(uint64(1), id)
	_, err = reg.MintOne(aliceAddress, testURI)
	require.ErrorIs(err, nft.ErrMaxSupply)
	require.Equal(uint64(2), reg.TotalSupply())

	uri, err := reg.TokenURI(0)
	require.NoError(err)
	require.Equal(testURI, uri)
	evts, err := reg.Transfers(0, 0)
	require.NoError(err)
	require.Len(evts, 2)
	require.Equal(uint64(0), evts[0].Id)
}

func TestConfigForVariant(t *testing.T) {
	require := require.New(t)

	conf, err := nft.ConfigForVariant("MuseMint")
	require.NoError(err)
	require.Equal(nft.MuseMintConfig(), conf)
	conf, err = nft.ConfigForVariant("")
	require.NoError(err)
	require.Equal(nft.MusebotAiConfig(), conf)
	_, err = nft.ConfigForVariant("erc20")
	require.Error(err)

	conf = nft.MusebotAiConfig()
	conf.Recipient = nft.RecipientPolicy(9)
	_, err = nft.Deploy(testStore(t), ownerAddress, conf)
	require.Error(err)
}
