package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"miniwallet/internal/application/port"
	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
)

const helpText = `commands:
  chains                         list configured chains
  use <chain>                    switch the current chain
  wallet                         show the current wallet
  generate                       create a new wallet
  import-mnemonic                import a wallet from a recovery phrase
  import-key                     import a wallet from a private key
  verify                         confirm the recovery phrase backup
  balance                        show the balance
  send <to> <amount> [tier]      send funds (tier: low, average, high)
  status <hash>                  look up a transaction
  history [limit]                list recent transactions
  fees [tier]                    estimate the transfer fee
  price                          show the USD price
  reset                          forget the current wallet
  help                           show this help
  quit                           exit`

type cli struct {
	in      *bufio.Reader
	out     io.Writer
	secret  func(prompt string) (string, error)
	chains  port.ChainService
	session port.WalletService
	txs     port.TransactionService
}

func (c *cli) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *cli) run(ctx context.Context) {
	c.printf("miniwallet on %s. Type help for commands.\n", c.session.Chain().Name)
	for ctx.Err() == nil {
		c.printf("%s> ", c.session.Chain().Symbol)
		line, ok := readLine(c.in)
		if !ok {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if err := c.exec(ctx, fields[0], fields[1:]); err != nil {
			c.printf("error: %v\n", err)
		}
	}
}

func (c *cli) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		c.printf("%s\n", helpText)
	case "chains":
		current := c.session.Chain().Name
		for _, ch := range c.chains.Chains(ctx) {
			marker := " "
			if ch.Name == current {
				marker = "*"
			}
			c.printf("%s %-12s %-14s %-6s %s\n", marker, ch.Name, ch.ChainID, ch.Symbol, ch.Family)
		}
	case "use":
		if len(args) != 1 {
			return errors.New("usage: use <chain>")
		}
		ch, err := c.session.UseChain(ctx, args[0])
		if err != nil {
			return err
		}
		c.printf("now on %s (%s)\n", ch.Name, ch.ChainID)
	case "wallet":
		view, err := c.session.Current(ctx)
		if err != nil {
			return err
		}
		c.printf("address:  %s\ncreated:  %s\nverified: %t\n", view.Address, view.CreatedAt.Format("2006-01-02 15:04"), view.Verified)
	case "generate":
		return c.generate(ctx)
	case "import-mnemonic":
		phrase, err := c.secret("recovery phrase: ")
		if err != nil {
			return err
		}
		view, err := c.session.ImportMnemonic(ctx, phrase)
		if err != nil {
			return err
		}
		c.printf("imported %s\n", view.Address)
	case "import-key":
		key, err := c.secret("private key: ")
		if err != nil {
			return err
		}
		view, err := c.session.ImportPrivateKey(ctx, key)
		if err != nil {
			return err
		}
		c.printf("imported %s\n", view.Address)
	case "verify":
		return c.verify(ctx)
	case "balance":
		bal, err := c.txs.Balance(ctx)
		if err != nil {
			return err
		}
		if bal.Degraded {
			c.printf("%s %s (no endpoint reachable, balance unknown)\n", bal.Display, bal.Symbol)
			return nil
		}
		c.printf("%s %s (~$%s)\n", bal.Display, bal.Symbol, bal.USD)
	case "send":
		return c.send(ctx, args)
	case "status":
		if len(args) != 1 {
			return errors.New("usage: status <hash>")
		}
		st, err := c.txs.Status(ctx, args[0])
		if err != nil {
			return err
		}
		c.printf("%s: %s (%d confirmations)\n", st.Hash, st.Status, st.Confirmations)
		if u := c.session.Chain().ExplorerTxURL(st.Hash); u != "" {
			c.printf("%s\n", u)
		}
	case "history":
		return c.history(ctx, args)
	case "fees":
		tier, err := tierArg(args, 0)
		if err != nil {
			return err
		}
		fee, err := c.txs.EstimateFee(ctx, tier)
		if err != nil {
			return err
		}
		c.printf("%s fee: %s %s (gas %d at %s)\n", fee.Tier, fee.Amount, fee.Denom, fee.GasLimit, fee.GasPrice)
	case "price":
		p, err := c.txs.Price(ctx)
		if err != nil {
			return err
		}
		suffix := ""
		if p.Fallback {
			suffix = " (fallback)"
		}
		c.printf("1 %s = $%s%s\n", c.session.Chain().Symbol, p.USD.String(), suffix)
	case "reset":
		if !c.confirm("forget the current wallet? [y/N] ") {
			return nil
		}
		if err := c.session.Reset(ctx); err != nil {
			return err
		}
		c.printf("wallet removed\n")
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func (c *cli) confirm(prompt string) bool {
	c.printf("%s", prompt)
	line, ok := readLine(c.in)
	return ok && strings.EqualFold(line, "y")
}

func (c *cli) generate(ctx context.Context) error {
	if _, err := c.session.Current(ctx); err == nil {
		if !c.confirm("a wallet exists and will be replaced. continue? [y/N] ") {
			return nil
		}
	} else if !errors.Is(err, domain.ErrWalletNotFound) {
		return err
	}

	rec, err := c.session.Generate(ctx)
	if err != nil {
		return err
	}
	c.printf("address: %s\n", rec.Address)
	if rec.HasMnemonic() {
		c.printf("write down your recovery phrase:\n")
		for i, w := range rec.Mnemonic {
			c.printf("%3d. %s\n", i+1, w)
		}
		c.printf("run verify once it is backed up\n")
	}
	return nil
}

func (c *cli) verify(ctx context.Context) error {
	positions, err := c.session.VerificationChallenge(ctx)
	if err != nil {
		return err
	}
	answers := make(map[int]string, len(positions))
	for _, p := range positions {
		word, err := c.secret(fmt.Sprintf("word #%d: ", p))
		if err != nil {
			return err
		}
		answers[p] = word
	}
	if err := c.session.Verify(ctx, answers); err != nil {
		return err
	}
	c.printf("recovery phrase verified\n")
	return nil
}

func (c *cli) send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: send <to> <amount> [tier]")
	}
	tier, err := tierArg(args, 2)
	if err != nil {
		return err
	}
	c.printf("memo (optional): ")
	memo, _ := readLine(c.in)

	if !c.confirm(fmt.Sprintf("send %s %s to %s? [y/N] ", args[1], c.session.Chain().Symbol, args[0])) {
		return nil
	}
	res, err := c.txs.Send(ctx, port.SendRequest{To: args[0], Amount: args[1], Memo: memo, Tier: tier})
	if err != nil {
		return err
	}
	c.printf("submitted %s\n", res.Hash)
	if u := c.session.Chain().ExplorerTxURL(res.Hash); u != "" {
		c.printf("%s\n", u)
	}
	return nil
}

func (c *cli) history(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("limit must be a non-negative integer, got %q", args[0])
		}
		limit = n
	}
	txs, err := c.txs.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		c.printf("no transactions\n")
		return nil
	}
	for _, tx := range txs {
		result := "ok"
		if tx.Code != 0 {
			result = "failed"
		}
		c.printf("%s  %-8s %-6s %s %s  %s\n",
			tx.Timestamp.Format("2006-01-02 15:04"), tx.Direction, result, tx.Amount, tx.Denom, tx.Hash)
	}
	return nil
}

func tierArg(args []string, i int) (entity.GasTier, error) {
	if len(args) <= i {
		return entity.GasTierAverage, nil
	}
	return entity.ParseGasTier(args[i])
}
