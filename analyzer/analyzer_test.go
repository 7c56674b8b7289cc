package analyzer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

func school() *core.Database {
	return &core.Database{
		Name: "school",
		Tables: []core.TableMeta{
			{
				Name:       "Students",
				RecordSize: 64,
				Columns: []core.ColumnMeta{
					{Name: "id", Type: core.IntType, Index: core.UniqueIndexed},
					{Name: "name", Type: core.StringType},
					{Name: "gpa", Type: core.RealType},
				},
			},
			{
				Name:       "Enrollments",
				RecordSize: 32,
				Columns: []core.ColumnMeta{
					{Name: "sid", Type: core.IntType},
					{Name: "course", Type: core.StringType},
				},
			},
		},
	}
}

func bind(t *testing.T, text string) (*Query, error) {
	t.Helper()
	stmt, err := sql.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return Bind(school(), stmt)
}

func TestBindResolvesCatalogNames(t *testing.T) {
	query, err := bind(t, "SELECT NAME, students.GPA FROM students WHERE Id >= 2;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	if query.Table().Name != "Students" {
		t.Errorf("Expected table Students, got %s", query.Table().Name)
	}
	if query.Database() != "school" {
		t.Errorf("Expected database school, got %s", query.Database())
	}

	columns := query.Columns()
	expected := []BoundColumn{
		{Table: "Students", Name: "name", Type: core.StringType},
		{Table: "Students", Name: "gpa", Type: core.RealType},
	}
	if len(columns) != len(expected) {
		t.Fatalf("Expected %d columns, got %d", len(expected), len(columns))
	}
	for i := range expected {
		if columns[i] != expected[i] {
			t.Errorf("Column %d: expected %+v, got %+v", i, expected[i], columns[i])
		}
	}

	where, ok := query.Where()
	if !ok {
		t.Fatal("Expected a where condition")
	}
	if where.Column.Name != "id" || where.Operator != sql.GreaterThanOrEqualOperator || where.Value != core.IntValue(2) {
		t.Errorf("Unexpected where condition %+v", where)
	}

	if query.ID() == uuid.Nil {
		t.Error("Expected a query ID")
	}
}

func TestBindSemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		rule Rule
	}{
		{"unknown table", "SELECT id FROM Teachers;", RuleUnknownTable},
		{"unknown join table", "SELECT id FROM Students JOIN Teachers ON id = tid;", RuleUnknownTable},
		{"unknown column", "SELECT age FROM Students;", RuleUnknownColumn},
		{"unknown where column", "SELECT id FROM Students WHERE age > 3;", RuleUnknownColumn},
		{"unknown order column", "SELECT id FROM Students ORDER BY age;", RuleUnknownColumn},
		{"qualifier not in query", "SELECT Enrollments.sid FROM Students;", RuleUnknownColumn},
		{"sum of string", "SELECT SUM(name) FROM Students;", RuleAggregateType},
		{"avg of string in order", "SELECT id FROM Students ORDER BY AVG(name);", RuleAggregateType},
		{"string literal on int", "SELECT id FROM Students WHERE id = 'one';", RuleLiteralType},
		{"int literal on string", "SELECT id FROM Students WHERE name = 3;", RuleLiteralType},
		{"like on real", "SELECT id FROM Students WHERE gpa LIKE '3%';", RuleLiteralType},
		{"like with number", "SELECT id FROM Students WHERE name LIKE 3;", RuleLiteralType},
		{"literal overflow", "SELECT id FROM Students WHERE id = 99999999999999999999;", RuleLiteralType},
		{"join type mismatch", "SELECT id FROM Students JOIN Enrollments ON Students.name = Enrollments.sid;", RuleJoinColumn},
		{"join same side", "SELECT id FROM Students JOIN Enrollments ON Students.id = Students.gpa;", RuleJoinColumn},
		{"missing join column", "SELECT id FROM Students JOIN Enrollments ON id = Enrollments.student;", RuleUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bind(t, tt.sql)
			var semanticErr *SemanticError
			if !errors.As(err, &semanticErr) {
				t.Fatalf("Expected *SemanticError, got %v", err)
			}
			if semanticErr.Rule != tt.rule {
				t.Errorf("Expected rule %s, got %s (%v)", tt.rule, semanticErr.Rule, semanticErr)
			}
		})
	}
}

func TestBindLiteralCompatibility(t *testing.T) {
	tests := []struct {
		sql      string
		expected core.Value
	}{
		{"SELECT id FROM Students WHERE gpa > 3;", core.IntValue(3)},
		{"SELECT id FROM Students WHERE id < 2.5;", core.RealValue(2.5)},
		{"SELECT id FROM Students WHERE name = 'Bob';", core.StringValue("Bob")},
		{"SELECT id FROM Students WHERE name LIKE 'B%';", core.StringValue("B%")},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			query, err := bind(t, tt.sql)
			if err != nil {
				t.Fatalf("Bind failed: %v", err)
			}
			where, _ := query.Where()
			if where.Value != tt.expected {
				t.Errorf("Expected literal %+v, got %+v", tt.expected, where.Value)
			}
		})
	}
}

func TestBindJoin(t *testing.T) {
	query, err := bind(t, "SELECT name, course FROM Students JOIN Enrollments ON sid = id;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	join, ok := query.Join()
	if !ok {
		t.Fatal("Expected a join condition")
	}
	if join.Left.Table != "Students" || join.Left.Name != "id" {
		t.Errorf("Expected left side Students.id, got %+v", join.Left)
	}
	if join.Right.Table != "Enrollments" || join.Right.Name != "sid" {
		t.Errorf("Expected right side Enrollments.sid, got %+v", join.Right)
	}

	columns := query.Columns()
	if columns[1].Table != "Enrollments" {
		t.Errorf("Expected course to resolve on Enrollments, got %s", columns[1].Table)
	}
	if joinTable, ok := query.JoinTable(); !ok || joinTable.Name != "Enrollments" {
		t.Errorf("Expected join table Enrollments, got %v", joinTable.Name)
	}
}

func TestBindSelfJoin(t *testing.T) {
	query, err := bind(t, "SELECT name FROM Students JOIN Students ON Students.id = Students.gpa;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	join, _ := query.Join()
	if join.Left.Joined || join.Left.Name != "id" {
		t.Errorf("Expected left side on the FROM table, got %+v", join.Left)
	}
	if !join.Right.Joined || join.Right.Name != "gpa" {
		t.Errorf("Expected right side on the JOIN table, got %+v", join.Right)
	}
	if columns := query.Columns(); columns[0].Joined {
		t.Errorf("Expected name to resolve on the FROM table, got %+v", columns[0])
	}
}

func TestBindRepeatedColumns(t *testing.T) {
	query, err := bind(t, "SELECT id, MIN(gpa), ID, MAX(gpa) FROM Students;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var labels []string
	for _, column := range query.Columns() {
		labels = append(labels, sql.Column{ColumnRef: column.Ref(), Function: column.Function}.String())
	}
	expected := "Students.id MIN(Students.gpa) Students.id MAX(Students.gpa)"
	if got := strings.Join(labels, " "); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestBindStar(t *testing.T) {
	query, err := bind(t, "SELECT * FROM Students JOIN Enrollments ON Students.id = Enrollments.sid;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var names []string
	for _, column := range query.Columns() {
		names = append(names, column.Table+"."+column.Name)
	}
	expected := "Students.id Students.name Students.gpa Enrollments.sid Enrollments.course"
	if got := strings.Join(names, " "); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestBindAggregates(t *testing.T) {
	query, err := bind(t, "SELECT COUNT(name), AVG(id), MAX(gpa) FROM Students;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if !query.HasAggregate() {
		t.Error("Expected HasAggregate")
	}

	expected := []core.ColumnType{core.IntType, core.RealType, core.RealType}
	for i, column := range query.Columns() {
		if column.ResultType() != expected[i] {
			t.Errorf("Column %d: expected result type %s, got %s", i, expected[i], column.ResultType())
		}
	}
}

func TestQueryIsImmutable(t *testing.T) {
	query, err := bind(t, "SELECT id, name FROM Students;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	columns := query.Columns()
	columns[0].Name = "changed"
	table := query.Table()
	table.Columns[0].Name = "changed"

	if query.Columns()[0].Name != "id" {
		t.Error("Expected Columns to return a copy")
	}
	if query.Table().Columns[0].Name != "id" {
		t.Error("Expected Table to return a copy")
	}
}

func TestBindDoesNotMutateCatalog(t *testing.T) {
	database := school()
	stmt, err := sql.Parse("SELECT * FROM students WHERE NAME = 'x';")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := Bind(database, stmt); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	if database.Tables[0].Name != "Students" || database.Tables[0].Columns[1].Name != "name" {
		t.Errorf("Catalog changed: %+v", database.Tables[0])
	}
}

func TestAnalyzeReportsSyntaxErrors(t *testing.T) {
	parser := sql.NewStringParser("SELECT FROM Students;")
	queue, err := parser.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	_, err = Analyze(school(), queue)
	var syntaxErr *sql.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("Expected *sql.SyntaxError, got %v", err)
	}
}

func TestBoundSelectPrint(t *testing.T) {
	query, err := bind(t, "SELECT name, COUNT(id) FROM students WHERE GPA > 3.0 ORDER BY gpa;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var buf bytes.Buffer
	query.Select().Print(&buf)
	out := buf.String()

	for _, want := range []string{
		"Table: Students",
		"Select column: Students.name",
		"Select column: COUNT(Students.id)",
		"Where Students.gpa > 3.0",
		"Order By Students.gpa ASC",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestStatementKeepsWrittenNames(t *testing.T) {
	query, err := bind(t, "SELECT name FROM students ORDER BY GPA DESC;")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	if got := query.Statement().String(); got != "SELECT name FROM students ORDER BY GPA DESC;" {
		t.Errorf("Expected the statement as written, got %q", got)
	}
	if got := query.Select().String(); got != "SELECT Students.name FROM Students ORDER BY Students.gpa DESC;" {
		t.Errorf("Expected the bound statement, got %q", got)
	}

	query.Statement().Columns[0].Name = "changed"
	if query.Statement().Columns[0].Name != "name" {
		t.Error("Expected Statement to return a copy")
	}
}
