package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"StockResearch/internal/config"
	"StockResearch/internal/corpus"
	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

const (
	defaultPapersTable = "papers"
	requestsTable      = "research_requests"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository reads the paper corpus and persists research requests in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.RequestRepository = (*PostgresRepository)(nil)
var _ corpus.Loader = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Name identifies the repository as a corpus loader strategy.
func (r *PostgresRepository) Name() string {
	return config.LoaderPostgres
}

// Load reads papers from the table named by the "table" option (default
// papers). The optional "ticker" option restricts rows to one ticker.
func (r *PostgresRepository) Load(ctx context.Context, src corpus.Source) ([]domain.Paper, error) {
	if r.db == nil {
		return nil, fmt.Errorf("source %s: postgres is not configured", src.Name)
	}

	query, args, err := selectPapersQuery(src.Options).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build papers query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper
	for rows.Next() {
		var (
			paper      domain.Paper
			categories pq.StringArray
			tickers    pq.StringArray
			published  sql.NullString
		)
		if err := rows.Scan(&paper.ID, &paper.Title, &paper.URL, &categories, &tickers, &published); err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		paper.Categories = []string(categories)
		paper.Tickers = []string(tickers)
		paper.PublishedDate = published.String
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return papers, nil
}

// SaveRequest upserts the research request snapshot.
func (r *PostgresRepository) SaveRequest(ctx context.Context, req domain.ResearchRequest) error {
	if r.db == nil {
		return nil
	}

	query, args, err := insertRequestQuery(req).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert request: %w", err)
	}
	return nil
}

// RecentRequests returns the newest requests first. Pair papers only carry ids.
func (r *PostgresRepository) RecentRequests(ctx context.Context, limit int) ([]domain.ResearchRequest, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := recentRequestsQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.ResearchRequest
	for rows.Next() {
		var (
			req        domain.ResearchRequest
			status     string
			responseID sql.NullString
		)
		if err := rows.Scan(&req.ID, &req.Ticker, &req.Pair.First.ID, &req.Pair.Second.ID,
			&responseID, &status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		req.ResponseID = responseID.String
		req.Status = domain.RequestStatus(status)
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return requests, nil
}

func selectPapersQuery(options map[string]string) sq.SelectBuilder {
	table := options["table"]
	if table == "" {
		table = defaultPapersTable
	}

	q := psql.Select("id", "title", "url", "categories", "stocks", "published_date").
		From(table).
		OrderBy("id")
	if ticker := options["ticker"]; ticker != "" {
		q = q.Where(sq.Expr("? = ANY(stocks)", ticker))
	}
	return q
}

func insertRequestQuery(req domain.ResearchRequest) sq.InsertBuilder {
	return psql.Insert(requestsTable).
		Columns("id", "ticker", "paper1_id", "paper2_id", "prompt", "response_id", "status", "created_at").
		Values(req.ID, req.Ticker, req.Pair.First.ID, req.Pair.Second.ID, req.Prompt,
			sql.NullString{String: req.ResponseID, Valid: req.ResponseID != ""},
			string(req.Status), req.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE
              SET response_id = EXCLUDED.response_id,
                  status = EXCLUDED.status`)
}

func recentRequestsQuery(limit int) sq.SelectBuilder {
	if limit <= 0 {
		limit = 20
	}
	return psql.Select("id", "ticker", "paper1_id", "paper2_id", "response_id", "status", "created_at").
		From(requestsTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
}
