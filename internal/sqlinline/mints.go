package sqlinline

const QEnsureMintsTable = `--sql 6c1d0f52-8a3e-4b7c-9f21-3e5d7a90b4c1
create table if not exists mints (
    id           uuid primary key,
    prompt       text        not null,
    state        text        not null,
    status       text        not null,
    image_uri    text        not null default '',
    token_uri    text        not null default '',
    tx_hash      text        not null default '',
    error        text        not null default '',
    created_at   timestamptz not null default now(),
    updated_at   timestamptz not null default now()
);
`

const QInsertMint = `--sql 1f8e2a47-5b6c-4d3e-8a9f-0c7b6d5e4f31
insert into mints (id, prompt, state, status, image_uri, token_uri, tx_hash, error, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9);
`

const QUpdateMint = `--sql 9a4c3b2d-1e0f-4a5b-8c7d-6e5f4a3b2c1d
update mints
set state = $2,
    status = $3,
    image_uri = $4,
    token_uri = $5,
    tx_hash = $6,
    error = $7,
    updated_at = $8
where id = $1;
`

const QSelectMint = `--sql 3d7e9f1a-2b4c-4d6e-8f0a-1b3c5d7e9f2a
select id::text, prompt, state, status, image_uri, token_uri, tx_hash, error, created_at, updated_at
from mints
where id = $1;
`

const QListRecentMints = `--sql 7b2a9c8d-4e6f-4a1b-9c3d-5e7f9a1b3c5d
select id::text, prompt, state, status, image_uri, token_uri, tx_hash, error, created_at, updated_at
from mints
order by created_at desc
limit $1;
`
