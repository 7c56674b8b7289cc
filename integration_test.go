package FlatDB

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"

	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/db"
	"github.com/nickyhof/FlatDB/op"
	"github.com/nickyhof/FlatDB/ps"
)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

var company = core.Database{
	Name: "company",
	Tables: []core.TableMeta{
		{Name: "employees", RecordSize: 48, Columns: []core.ColumnMeta{
			{Name: "id", Type: core.IntType, Index: core.UniqueIndexed},
			{Name: "name", Type: core.StringType},
			{Name: "department", Type: core.StringType},
			{Name: "salary", Type: core.IntType},
		}},
		{Name: "departments", Columns: []core.ColumnMeta{
			{Name: "name", Type: core.StringType, Index: core.UniqueIndexed},
			{Name: "floor", Type: core.IntType},
		}},
	},
}

// TestFunc is the signature for test functions that work with any persistence
type TestFunc func(t *testing.T, instance *Instance)

// runWithAllPersistence runs a test function against memory, git and plain
// directory catalogs
func runWithAllPersistence(t *testing.T, testFunc TestFunc) {
	t.Run("Memory", func(t *testing.T) {
		persistence, err := ps.NewMemoryPersistence()
		if err != nil {
			t.Fatalf("Failed to initialize memory persistence: %v", err)
		}
		testFunc(t, Open(persistence))
	})

	t.Run("Git", func(t *testing.T) {
		persistence, err := ps.NewGitPersistence(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to initialize git persistence: %v", err)
		}
		testFunc(t, Open(persistence))
	})

	t.Run("Directory", func(t *testing.T) {
		testFunc(t, Open(ps.NewDirectoryPersistence(memfs.New())))
	})
}

func loadCompany(t *testing.T, instance *Instance) *core.Database {
	t.Helper()

	_, dbOp, err := op.CreateDatabase(company, instance.Persistence, testIdentity)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	employees, _ := dbOp.Table("employees")
	_, err = employees.PutAll([]op.Record{
		{core.IntValue(1), core.StringValue("Alice"), core.StringValue("Engineering"), core.IntValue(80000)},
		{core.IntValue(2), core.StringValue("Bob"), core.StringValue("Engineering"), core.IntValue(75000)},
		{core.IntValue(3), core.StringValue("Charlie"), core.StringValue("Sales"), core.IntValue(60000)},
		{core.IntValue(4), core.StringValue("Diana"), core.StringValue("Marketing"), core.IntValue(65000)},
		{core.IntValue(5), core.StringValue("Eve"), core.StringValue("Engineering"), core.IntValue(90000)},
	}, testIdentity)
	if err != nil {
		t.Fatalf("Failed to write employees: %v", err)
	}

	departments, _ := dbOp.Table("departments")
	_, err = departments.PutAll([]op.Record{
		{core.StringValue("Engineering"), core.IntValue(3)},
		{core.StringValue("Sales"), core.IntValue(1)},
	}, testIdentity)
	if err != nil {
		t.Fatalf("Failed to write departments: %v", err)
	}

	database, err := instance.Database("company")
	if err != nil {
		t.Fatalf("Failed to load database: %v", err)
	}
	return database
}

// TestIntegrationWorkflow tests a complete read workflow
func TestIntegrationWorkflow(t *testing.T) {
	runWithAllPersistence(t, func(t *testing.T, instance *Instance) {
		database := loadCompany(t, instance)
		engine := instance.Engine(testIdentity)

		databases, err := instance.Databases()
		if err != nil || !reflect.DeepEqual(databases, []string{"company"}) {
			t.Errorf("Expected [company], got %v (%v)", databases, err)
		}

		result, err := engine.Query(database, "SELECT name FROM employees WHERE department = 'engineering' ORDER BY salary DESC;")
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		expected := [][]string{{"Eve"}, {"Alice"}, {"Bob"}}
		if !reflect.DeepEqual(result.Data, expected) {
			t.Errorf("Expected %v, got %v", expected, result.Data)
		}

		result, err = engine.Query(database, "SELECT AVG(salary) FROM employees WHERE salary >= 65000;")
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if result.Data[0][0] != "77500.0" {
			t.Errorf("Expected 77500.0, got %s", result.Data[0][0])
		}

		result, err = engine.Query(database,
			"SELECT employees.name, departments.floor FROM employees JOIN departments ON employees.department = departments.name LIMIT 4;")
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		expected = [][]string{{"Alice", "3"}, {"Bob", "3"}, {"Charlie", "1"}, {"Eve", "3"}}
		if !reflect.DeepEqual(result.Data, expected) {
			t.Errorf("Expected %v, got %v", expected, result.Data)
		}
	})
}

func TestIntegrationStatementStream(t *testing.T) {
	runWithAllPersistence(t, func(t *testing.T, instance *Instance) {
		database := loadCompany(t, instance)
		engine := instance.Engine(testIdentity)

		script := `
SELECT COUNT(id) FROM employees;
SELECT salary FROM employees WHERE name LIKE 'd%';
SELECT bonus FROM employees;
SELECT MIN(salary) FROM employees WHERE department <> 'Sales';
`
		var outputs []string
		err := engine.Run(database, strings.NewReader(script), func(r db.StatementResult) {
			if r.Err != nil {
				outputs = append(outputs, "error")
				return
			}
			outputs = append(outputs, r.Result.Data[0][0])
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !reflect.DeepEqual(outputs, []string{"5", "65000", "error", "65000"}) {
			t.Errorf("Unexpected outputs %v", outputs)
		}
	})
}

func TestIntegrationMissingDataFile(t *testing.T) {
	runWithAllPersistence(t, func(t *testing.T, instance *Instance) {
		if _, _, err := op.CreateDatabase(company, instance.Persistence, testIdentity); err != nil {
			t.Fatalf("Failed to create database: %v", err)
		}
		database, _ := instance.Database("company")

		_, err := instance.Engine(testIdentity).Query(database, "SELECT id FROM employees;")
		if !errors.Is(err, db.ErrFatal) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected a fatal missing-file error, got %v", err)
		}
	})
}

func TestIntegrationUnknownDatabase(t *testing.T) {
	persistence, _ := ps.NewMemoryPersistence()
	if _, err := Open(persistence).Database("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

// TestIntegrationHistory queries a git catalog as of an earlier commit.
func TestIntegrationHistory(t *testing.T) {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to initialize persistence: %v", err)
	}
	instance := Open(persistence)
	database := loadCompany(t, instance)
	before := persistence.LatestTransaction()

	employees := &op.TableOp{Database: "company", Table: database.Tables[0], Persistence: persistence}
	if _, err := employees.Append([]op.Record{{core.IntValue(6), core.StringValue("Frank"), core.StringValue("Sales"), core.IntValue(50000)}}, testIdentity); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	engine := instance.Engine(testIdentity)
	count := func() string {
		result, err := engine.Query(database, "SELECT COUNT(id) FROM employees;")
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		return result.Data[0][0]
	}

	if got := count(); got != "6" {
		t.Errorf("Expected 6 employees, got %s", got)
	}
	if _, err := persistence.Checkout(before.Id); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if got := count(); got != "5" {
		t.Errorf("Expected 5 employees as of %s, got %s", before.Id, got)
	}
	if _, err := persistence.Checkout(""); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if got := count(); got != "6" {
		t.Errorf("Expected 6 employees after unpinning, got %s", got)
	}
}

func TestOpenPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "company"), 0755); err != nil {
		t.Fatal(err)
	}
	schema, err := core.MarshalSchema(company)
	if err != nil {
		t.Fatalf("MarshalSchema failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "company", "schema.yaml"), schema, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "company", "departments.data"), []byte("'Sales' 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	instance, err := OpenPath(context.Background(), dir, nil, nil)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if instance.Persistence.IsVersioned() {
		t.Error("Expected a plain directory")
	}
	database, err := instance.Database("company")
	if err != nil {
		t.Fatalf("Database failed: %v", err)
	}

	result, err := instance.Engine(testIdentity).Query(database, "SELECT floor FROM departments WHERE name = 'sales';")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if !reflect.DeepEqual(result.Data, [][]string{{"1"}}) {
		t.Errorf("Unexpected data %v", result.Data)
	}

	_, err = instance.Engine(testIdentity).Query(database, "SELECT nope FROM departments;")
	var semanticErr *analyzer.SemanticError
	if !errors.As(err, &semanticErr) {
		t.Errorf("Expected a semantic error, got %v", err)
	}
}
