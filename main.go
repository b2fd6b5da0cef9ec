package main

import (
	"flag"
	"fmt"
	"os"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/config"
	"heapstore/pkg/database"
	"heapstore/pkg/logging"
	"heapstore/pkg/primitives"
	"heapstore/pkg/table"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		dataDir    = flag.String("data", "", "data directory (overrides config)")
		demo       = flag.Bool("demo", false, "create a sample table and run a few transactions")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, *dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	db, err := database.Open(cfg)
	if err != nil {
		logging.Errorf("failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if *demo {
		if err := runDemo(db); err != nil {
			logging.Errorf("demo failed: %v", err)
			os.Exit(1)
		}
	}
}

func loadConfig(configPath, dataDir string) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

// runDemo exercises the engine end to end: create a table, commit a batch
// of rows, abort another, and scan what remains.
func runDemo(db *database.Database) error {
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.DecimalType},
		[]string{"id", "owner", "balance"})
	if err != nil {
		return err
	}

	accounts, err := db.CreateTable("accounts", "id", td)
	if err != nil {
		return err
	}

	committed := db.Begin()
	if err := insertAccounts(accounts, committed, 1, map[string]string{
		"alice": "120.50",
		"bob":   "75.00",
	}); err != nil {
		return err
	}
	if err := db.Commit(committed); err != nil {
		return err
	}

	// these rows must not survive
	aborted := db.Begin()
	if err := insertAccounts(accounts, aborted, 100, map[string]string{
		"mallory": "9999.99",
	}); err != nil {
		return err
	}
	if err := db.Abort(aborted); err != nil {
		return err
	}

	return printAccounts(db, accounts)
}

func insertAccounts(tbl *table.Table, txn *transaction.Transaction, startID int32, balances map[string]string) error {
	id := startID
	for owner, balance := range balances {
		row := tuple.NewTuple(tbl.TupleDesc())
		if err := row.SetField(0, types.NewIntField(id)); err != nil {
			return err
		}
		if err := row.SetField(1, types.NewStringField(owner)); err != nil {
			return err
		}
		amount, err := types.NewDecimalFieldFromString(balance)
		if err != nil {
			return err
		}
		if err := row.SetField(2, amount); err != nil {
			return err
		}
		if _, err := tbl.InsertTuple(txn.ID, row); err != nil {
			return err
		}
		id++
	}
	return nil
}

func printAccounts(db *database.Database, tbl *table.Table) error {
	txn := db.Begin()
	defer db.Commit(txn)

	it := tbl.Scan(txn.ID).
		Filter(2, primitives.GreaterThan, mustDecimal("0"))
	if err := it.Open(); err != nil {
		return err
	}
	defer it.Close()

	for {
		hasNext, err := it.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}
		row, err := it.Next()
		if err != nil {
			return err
		}
		fmt.Println(row)
	}
}

func mustDecimal(s string) types.Field {
	f, err := types.NewDecimalFieldFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}
