package develop

// templateText is the content `dob develop init` writes to a fresh
// editables file. A package test keeps it aligned with the checked-in
// editables.example.
const templateText = `# Copy this file to 'editables' (which is gitignored) to develop dob
# against local checkouts of its sibling projects instead of released
# module versions.
#
#   cp editables.example editables
#
# Uncomment or edit the lines below to match your machine, then run
# ` + "`dob develop sync`" + `. Each enabled line is wired into go.work in
# editable mode, so source edits in the sibling take effect without
# reinstalling anything.
#
# Paths are resolved relative to this file. The siblings are expected
# to be checked out next to this repository, e.g.:
#
#   src/
#     dob/            <- you are here
#     nark/
#     dob-bright/
#
# That layout is a convention, not a requirement; absolute paths work
# too.

# -e ../nark
# -e ../dob-bright
# -e ../dob-prompt
# -e ../dob-viewer
# -e ../config-decorator
`
