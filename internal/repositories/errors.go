package repositories

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"
