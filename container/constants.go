package container

const workerWorkingDirectory = "/workspace"

const jobScriptFileName = "job.sh"
const jobScriptPath = workerWorkingDirectory + "/" + jobScriptFileName
