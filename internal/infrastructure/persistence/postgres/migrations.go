// Package postgres implements the PostgreSQL persistence layer for the
// internship hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE APPLICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create applications table
-- Version: 001

CREATE TABLE IF NOT EXISTS applications (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL,
    student_name VARCHAR(200) NOT NULL,
    student_faculty_id VARCHAR(100) NOT NULL,
    offer_id VARCHAR(100) NOT NULL,
    offer_title VARCHAR(300) NOT NULL,
    company_id VARCHAR(100) NOT NULL,
    company_name VARCHAR(200) NOT NULL,
    company_owner_id UUID NOT NULL,
    cover_note TEXT NOT NULL DEFAULT '',
    status VARCHAR(30) NOT NULL DEFAULT 'PENDING',
    decided_at TIMESTAMP WITH TIME ZONE,
    submitted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_application_status CHECK (
        status IN ('PENDING', 'VIEWED', 'ACCEPTED', 'REJECTED', 'AWAITING_AGREEMENT')
    ),
    -- One live application per student per offer
    CONSTRAINT uniq_student_offer UNIQUE (student_id, offer_id)
);

CREATE INDEX IF NOT EXISTS idx_applications_student ON applications(student_id);
CREATE INDEX IF NOT EXISTS idx_applications_company_owner ON applications(company_owner_id);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_applications_faculty ON applications(student_faculty_id);
`

const migration001Down = `
DROP TABLE IF EXISTS applications;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE AGREEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create agreements table
-- Version: 002

CREATE TABLE IF NOT EXISTS agreements (
    id UUID PRIMARY KEY,
    application_id UUID NOT NULL REFERENCES applications(id),
    document_ref TEXT NOT NULL,
    approval_status VARCHAR(30) NOT NULL DEFAULT 'PENDING_FACULTY_VALIDATION',

    faculty_validator_id UUID,
    faculty_validated_at TIMESTAMP WITH TIME ZONE,
    faculty_rejection_reason TEXT NOT NULL DEFAULT '',

    admin_approver_id UUID,
    admin_decided_at TIMESTAMP WITH TIME ZONE,
    admin_rejection_reason TEXT NOT NULL DEFAULT '',

    student_signed_at TIMESTAMP WITH TIME ZONE,
    company_signed_at TIMESTAMP WITH TIME ZONE,
    faculty_signed_at TIMESTAMP WITH TIME ZONE,

    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_approval_status CHECK (
        approval_status IN ('PENDING_FACULTY_VALIDATION', 'PENDING_ADMIN_APPROVAL', 'APPROVED', 'REJECTED')
    )
);

-- At most one non-rejected agreement per application
CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_agreement_per_application
    ON agreements(application_id)
    WHERE approval_status != 'REJECTED';

CREATE INDEX IF NOT EXISTS idx_agreements_application ON agreements(application_id);
CREATE INDEX IF NOT EXISTS idx_agreements_approval_status ON agreements(approval_status);
CREATE INDEX IF NOT EXISTS idx_agreements_validator ON agreements(faculty_validator_id)
    WHERE faculty_validator_id IS NOT NULL;
`

const migration002Down = `
DROP TABLE IF EXISTS agreements;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE NOTIFICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create notifications table
-- Version: 003

CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    recipient_id UUID NOT NULL,
    type VARCHAR(40) NOT NULL,
    message TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    delivery_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_delivery_status CHECK (
        delivery_status IN ('pending', 'delivered', 'failed')
    )
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(recipient_id)
    WHERE is_read = FALSE;
CREATE INDEX IF NOT EXISTS idx_notifications_undelivered ON notifications(created_at)
    WHERE delivery_status = 'pending';
`

const migration003Down = `
DROP TABLE IF EXISTS notifications;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_applications",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_agreements",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_notifications",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
